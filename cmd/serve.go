package cmd

import (
	"github.com/wikisphere/userverify/internal/audit"
	"github.com/wikisphere/userverify/internal/configs"
	"github.com/wikisphere/userverify/internal/database"
	"github.com/wikisphere/userverify/internal/documents"
	"github.com/wikisphere/userverify/internal/httpapi"
	"github.com/wikisphere/userverify/internal/keystore"
	logger "github.com/wikisphere/userverify/internal/logging"
	"github.com/wikisphere/userverify/internal/records"
	"github.com/wikisphere/userverify/internal/session"
	"github.com/wikisphere/userverify/internal/verification"

	"github.com/spf13/cobra"
)

var (
	serveVerbose    bool
	serveDebug      bool
	serveConfigPath string

	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the verification HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Logger{Verbose: serveVerbose, Debug: serveDebug}

			config, err := configs.LoadConfig(serveConfigPath)
			if err != nil {
				return log.ErrorfAndReturn("failed to load config: %v", err)
			}
			if config.Session.SigningKey == "" {
				log.WarnfUser("session.signing_key is empty; user-key cookies will not be tamper-protected across restarts")
			}

			db, err := database.Open(config.Database.Path)
			if err != nil {
				return log.ErrorfAndReturn("failed to open database: %v", err)
			}

			svc := verification.NewService(
				keystore.NewStore(db),
				records.NewStore(db),
				documents.NewVault(config.Uploads.Dir, config.Uploads.MaxSize),
				configGroups(config.Review.Groups),
				config.Review.AuthorizedGroups,
				audit.NewTrail(config.AuditLog),
			)

			server := httpapi.NewServer(
				svc,
				session.NewCarrier(config.Session),
				httpapi.HeaderIdentity{UserHeader: "X-Auth-User", UserIDHeader: "X-Auth-User-Id"},
				log,
			)

			log.Infof("Listening on %s", config.Server.Addr)
			return server.Router().Run(config.Server.Addr)
		},
	}
)

func init() {
	ServeCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "enable verbose output")
	ServeCmd.Flags().BoolVarP(&serveDebug, "debug", "d", false, "enable debug output")
	ServeCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "userverify.toml", "path to the config file")
}

// configGroups serves group membership from the config file. Deployments
// integrated with a wiki's own group manager replace this with a live
// provider.
type configGroups map[string][]string

func (g configGroups) UserGroups(username string) ([]string, error) {
	return g[username], nil
}
