package configs

import (
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so TOML values like "720h" parse.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config carries all runtime-configurable behavior. It is passed explicitly
// to constructors; nothing reads ambient globals.
type Config struct {
	Database Database `toml:"database"`
	Uploads  Uploads  `toml:"uploads"`
	Session  Session  `toml:"session"`
	Review   Review   `toml:"review"`
	Server   Server   `toml:"server"`
	AuditLog string   `toml:"audit_log"`
}

type Database struct {
	Path string `toml:"path"`
}

type Uploads struct {
	// Dir is the root under which one directory per user id is created.
	Dir string `toml:"dir"`

	// MaxSize is the per-file upload limit in bytes.
	MaxSize int64 `toml:"max_size"`
}

type Session struct {
	// RememberDuration bounds the user-key cookie lifetime.
	RememberDuration Duration `toml:"remember_duration"`

	// SigningKey authenticates the cookie value. Hex or raw string; only its
	// bytes matter.
	SigningKey string `toml:"signing_key"`

	CookiePrefix string `toml:"cookie_prefix"`
	CookiePath   string `toml:"cookie_path"`
	CookieDomain string `toml:"cookie_domain"`
	CookieSecure bool   `toml:"cookie_secure"`
	// CookieHTTPOnly defaults to true unless explicitly disabled.
	CookieHTTPOnly *bool  `toml:"cookie_http_only"`
	CookieSameSite string `toml:"cookie_same_site"`
}

type Review struct {
	// AuthorizedGroups may decrypt and review verification data.
	AuthorizedGroups []string `toml:"authorized_groups"`

	// Groups maps usernames to group memberships for deployments where the
	// host platform does not push membership some other way.
	Groups map[string][]string `toml:"groups"`
}

type Server struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns a configuration with working local defaults.
func DefaultConfig() Config {
	httpOnly := true
	return Config{
		Database: Database{Path: "userverify.db"},
		Uploads: Uploads{
			Dir:     "uploads",
			MaxSize: 10 << 20,
		},
		Session: Session{
			RememberDuration: Duration{30 * 24 * time.Hour},
			CookiePath:       "/",
			CookieHTTPOnly:   &httpOnly,
			CookieSameSite:   "lax",
		},
		Review: Review{
			AuthorizedGroups: []string{
				"sysop",
				"bureaucrat",
				"interface-admin",
				"userverification-admin",
			},
		},
		Server:   Server{Addr: ":8080"},
		AuditLog: "userverify-audit.jsonl",
	}
}

// LoadConfig reads the config file at path, applying defaults for anything
// the file leaves unset. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(path, &config); err != nil {
		return config, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if config.Session.CookieHTTPOnly == nil {
		httpOnly := true
		config.Session.CookieHTTPOnly = &httpOnly
	}

	return config, nil
}
