package cmd

import (
	"errors"

	"github.com/wikisphere/userverify/internal/configs"
	"github.com/wikisphere/userverify/internal/database"
	uverrors "github.com/wikisphere/userverify/internal/errors"
	"github.com/wikisphere/userverify/internal/keystore"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a verification key pair is provisioned",
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Checking key status...", verbose)
		defer cleanup()

		config, err := configs.LoadConfig(configPath)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load config: %v", err)
		}

		db, err := database.Open(config.Database.Path)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open database: %v", err)
		}

		record, err := keystore.NewStore(db).ActiveKey()
		if errors.Is(err, uverrors.ErrKeysNotSet) {
			spinner.FinalMSG = color.RedString("✗") + " No keys provisioned\n" +
				color.CyanString("→") + " Run " + color.YellowString("userverify keys create --password <password>")
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load key record: %v", err)
		}

		spinner.FinalMSG = color.GreenString("✓") + " Keys provisioned\n" +
			color.CyanString("→") + " Created " + record.CreatedAt.Format("2006-01-02 15:04:05")
		return nil
	},
}
