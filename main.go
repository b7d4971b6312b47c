package main

import (
	"fmt"
	"os"

	"github.com/wikisphere/userverify/cmd"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "userverify",
	Short: "userverify - identity verification with envelope encryption for wiki platforms.",
	Long: `userverify collects identity documents from users, encrypts them at rest
under a single system key pair, and routes them through an administrator
review workflow. Administrators unlock decryption with a password-protected
key that lives only in their session.

Usage:
  userverify <command> [flags]

Available Commands:
  keys       Provision and inspect the verification key pair
  serve      Run the verification HTTP API

Run 'userverify help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Run 'userverify --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.KeysCmd)
	rootCmd.AddCommand(cmd.ServeCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
