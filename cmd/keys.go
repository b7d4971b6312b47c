package cmd

import (
	logger "github.com/wikisphere/userverify/internal/logging"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	debug      bool
	configPath string
	Logger     logger.Logger

	KeysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Manage the verification key pair",
		Long:  `Provides one-time provisioning and inspection of the system key pair that protects verification data.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing keys command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	KeysCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	KeysCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	KeysCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "userverify.toml", "path to the config file")

	KeysCmd.AddCommand(createCmd)
	KeysCmd.AddCommand(statusCmd)
}
