package cmd

import (
	"errors"

	"github.com/wikisphere/userverify/internal/audit"
	"github.com/wikisphere/userverify/internal/configs"
	"github.com/wikisphere/userverify/internal/database"
	uverrors "github.com/wikisphere/userverify/internal/errors"
	"github.com/wikisphere/userverify/internal/keystore"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var createPassword string

func init() {
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "administrator password protecting the key pair")
	_ = createCmd.MarkFlagRequired("password")
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision the verification key pair (one-time)",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys create command")
		spinner, cleanup := startSpinner("Provisioning verification keys...", verbose)
		defer cleanup()

		Logger.Debugf("Loading config from %s", configPath)
		config, err := configs.LoadConfig(configPath)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load config: %v", err)
		}

		db, err := database.Open(config.Database.Path)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open database: %v", err)
		}

		store := keystore.NewStore(db)
		record, warnings, err := store.Provision(createPassword)

		if len(warnings) > 0 {
			spinner.Stop()
			for _, w := range warnings {
				Logger.WarnfUser("%s", w.Message)
			}
			spinner.Restart()
		}

		var validationErr *keystore.ValidationError
		if errors.As(err, &validationErr) {
			finalMessage := color.RedString("✗") + " Password rejected\n"
			for _, f := range validationErr.Failures {
				finalMessage += color.CyanString("→") + " " + f.Message + "\n"
			}
			spinner.FinalMSG = finalMessage
			return nil
		}
		if errors.Is(err, uverrors.ErrKeysExist) {
			spinner.FinalMSG = color.RedString("✗") + " Keys exist\n" +
				color.CyanString("→") + " Provisioning is insert-only; the existing record was not touched"
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to provision keys: %v", err)
		}

		audit.NewTrail(config.AuditLog).Log(audit.Entry{Operation: "provision", Outcome: "ok"})

		Logger.Infof("Key record %d created", record.ID)
		spinner.FinalMSG = color.GreenString("✓") + " Keys created\n" +
			color.CyanString("→") + " All verification data will be encrypted under the new public key"
		return nil
	},
}
