package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	Env      string `envconfig:"NODE_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	SessionSecret        string `envconfig:"SESSION_SECRET" required:"true"`
	SessionStore         string `envconfig:"SESSION_STORE" default:"postgres"` // postgres, memory, redis
	SessionSweepSchedule string `envconfig:"SESSION_SWEEP_SCHEDULE" default:"@every 12h"`
	RedisURL             string `envconfig:"REDIS_URL"`
	CookieDomain         string `envconfig:"COOKIE_DOMAIN"`

	OrcidBase         string `envconfig:"ORCID_BASE" default:"https://orcid.org"`
	OrcidAPIBase      string `envconfig:"ORCID_API_BASE" default:"https://pub.orcid.org"`
	OrcidClientID     string `envconfig:"ORCID_CLIENT_ID" required:"true"`
	OrcidClientSecret string `envconfig:"ORCID_CLIENT_SECRET" required:"true"`
	OrcidRedirectURI  string `envconfig:"ORCID_REDIRECT_URI" required:"true"`
	OrcidScope        string `envconfig:"ORCID_SCOPE" default:"/authenticate"`
	ProfilePath       string `envconfig:"PROFILE_PATH" default:"/profile.html"`

	StaticDir string `envconfig:"STATIC_DIR"`
	PublicDir string `envconfig:"PUBLIC_DIR" default:"public"`

	// Upstream-APIs für Anreicherung (best effort)
	OpenAlexBaseURL  string `envconfig:"OPENALEX_BASE_URL" default:"https://api.openalex.org"`
	OpenAlexMailto   string `envconfig:"OPENALEX_MAILTO"`
	UnpaywallBaseURL string `envconfig:"UNPAYWALL_BASE_URL" default:"https://api.unpaywall.org/v2"`
	UnpaywallEmail   string `envconfig:"UNPAYWALL_EMAIL"`

	UpstreamMaxAttempts int           `envconfig:"UPSTREAM_MAX_ATTEMPTS" default:"3"`
	UpstreamBaseDelay   time.Duration `envconfig:"UPSTREAM_BASE_DELAY" default:"1s"`
	UpstreamMaxDelay    time.Duration `envconfig:"UPSTREAM_MAX_DELAY" default:"5s"`

	// S3 für hochgeladene Materialien; leer = Uploads deaktiviert
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET"`

	CORSOrigins string `envconfig:"CORS_ORIGINS"`
}

// Production meldet, ob der Dienst im Produktionsmodus läuft.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// StaticRoot gibt das Verzeichnis des statischen Frontends zurück.
func (c *Config) StaticRoot() string {
	if c.StaticDir != "" {
		return c.StaticDir
	}
	return c.PublicDir
}

// UploadsEnabled meldet, ob ein S3-Bucket für Materialien konfiguriert ist.
func (c *Config) UploadsEnabled() bool {
	return c.S3Bucket != ""
}

// AllowedOrigins zerlegt CORS_ORIGINS in eine Liste.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) validate() error {
	required := map[string]string{
		"DATABASE_URL":        c.DatabaseURL,
		"SESSION_SECRET":      c.SessionSecret,
		"ORCID_CLIENT_ID":     c.OrcidClientID,
		"ORCID_CLIENT_SECRET": c.OrcidClientSecret,
		"ORCID_REDIRECT_URI":  c.OrcidRedirectURI,
	}
	for key, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("required key %s missing value", key)
		}
	}

	switch c.SessionStore {
	case "postgres", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.UpstreamMaxAttempts < 2 {
		c.UpstreamMaxAttempts = 2
	}
	if c.UpstreamMaxAttempts > 4 {
		c.UpstreamMaxAttempts = 4
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
