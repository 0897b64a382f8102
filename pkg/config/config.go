package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COMCOL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN    = "COMCOL_DB_DSN"
	EnvDBHost   = "COMCOL_DB_HOST"
	EnvDBUser   = "COMCOL_DB_USER"
	EnvDBName   = "COMCOL_DB_NAME"
	EnvReadOnly = "COMCOL_READ_ONLY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Media        MediaConfig
	Gate         GateConfig
	Settings     SettingsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Media.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMCOL_APP_ENV" required:"true"`
	Port         string `envconfig:"COMCOL_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"COMCOL_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"COMCOL_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"COMCOL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

func (a AppConfig) LogConsole() bool {
	return strings.EqualFold(a.LogFormat, "console")
}

type DBConfig struct {
	DSN    string `envconfig:"COMCOL_DB_DSN"`
	Driver string `envconfig:"COMCOL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COMCOL_DB_HOST"`
	LegacyPort     int    `envconfig:"COMCOL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COMCOL_DB_USER"`
	LegacyPassword string `envconfig:"COMCOL_DB_PASSWORD"`
	LegacyName     string `envconfig:"COMCOL_DB_NAME"`
	LegacySSLMode  string `envconfig:"COMCOL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COMCOL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COMCOL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COMCOL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMCOL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// MediaConfig controls blob placement, public URL resolution and the derived
// image policy.
type MediaConfig struct {
	RootDir       string `envconfig:"COMCOL_MEDIA_ROOT" default:"media"`
	PublicPrefix  string `envconfig:"COMCOL_MEDIA_PUBLIC_PREFIX" default:"/media"`
	CollectionDir string `envconfig:"COMCOL_MEDIA_COLLECTION_DIR" default:"computer_pictures"`
	JPEGQuality   int    `envconfig:"COMCOL_MEDIA_JPEG_QUALITY" default:"85"`
	CropSquare    bool   `envconfig:"COMCOL_MEDIA_CROP_SQUARE" default:"true"`
	MaxUploadMB   int    `envconfig:"COMCOL_MEDIA_MAX_UPLOAD_MB" default:"20"`
}

func (m MediaConfig) validate() error {
	if !strings.HasPrefix(m.PublicPrefix, "/") {
		return fmt.Errorf("media public prefix must start with '/': %q", m.PublicPrefix)
	}
	if strings.ContainsAny(m.CollectionDir, "/\\") || m.CollectionDir == "" {
		return fmt.Errorf("media collection dir must be a bare directory name: %q", m.CollectionDir)
	}
	if m.JPEGQuality < 1 || m.JPEGQuality > 100 {
		return fmt.Errorf("media jpeg quality out of range: %d", m.JPEGQuality)
	}
	return nil
}

// MaxUploadBytes returns the multipart upload ceiling in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) * 1024 * 1024
}

// GateConfig seeds the process-wide write gate. Writable re-reads the
// environment on each call so the gate can be flipped without a restart,
// falling back to the value parsed at startup.
type GateConfig struct {
	ReadOnly bool `envconfig:"COMCOL_READ_ONLY" default:"false"`
}

func (g GateConfig) Writable() bool {
	if raw, ok := os.LookupEnv(EnvReadOnly); ok {
		if readOnly, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return !readOnly
		}
	}
	return !g.ReadOnly
}

type SettingsConfig struct {
	Description string `envconfig:"COMCOL_SETTINGS_DESCRIPTION" default:"Computer hardware collectibles catalog"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COMCOL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
