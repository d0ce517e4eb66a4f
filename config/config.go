package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Webhooks      WebhookConfig
	Email         EmailConfig
	GoogleOAuth   GoogleOAuthConfig
	Session       SessionConfig
	CustomerStore CustomerStoreConfig
	ContactLimit  ContactLimitConfig
	Wizard        WizardConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

// WebhookConfig holds the automation platform endpoints. The first three
// fall back to literal URLs when unset; the chat relay has no fallback and
// reports itself unconfigured instead.
type WebhookConfig struct {
	AvailabilityURL string
	BookingURL      string
	FollowupURL     string
	ChatURL         string
}

type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
	ToAddress    string
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type SessionConfig struct {
	JWTSecret    string
	JWTIssuer    string
	TTLHours     int
	CookieDomain string
	CookieSecure bool
}

type CustomerStoreConfig struct {
	APIKey      string
	BaseID      string
	TableName   string
	WorkOffline bool
}

type ContactLimitConfig struct {
	MaxRequests   int
	WindowMinutes int
}

type WizardConfig struct {
	SessionTTLMinutes int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint string
	ServiceName      string
	ServiceVersion   string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://tesseractintegrations.com")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://tesseractintegrations.com,https://www.tesseractintegrations.com")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("N8N_WEBHOOK_AVAILABILITY", "https://tesseract.app.n8n.cloud/webhook/tesseract-check-availability")
	v.SetDefault("N8N_WEBHOOK_BOOKING", "https://tesseract.app.n8n.cloud/webhook/tesseract-booking-new")
	v.SetDefault("N8N_WEBHOOK_FOLLOWUP", "https://tesseract.app.n8n.cloud/webhook/tesseract-followup-sequence")
	v.SetDefault("CONTACT_EMAIL_FROM", "website@tesseractintegrations.com")
	v.SetDefault("CONTACT_EMAIL_TO", "hello@tesseractintegrations.com")
	v.SetDefault("CONTACT_RATE_LIMIT", 5)
	v.SetDefault("CONTACT_RATE_WINDOW_MINUTES", 15)
	v.SetDefault("WIZARD_SESSION_TTL_MINUTES", 30)
	v.SetDefault("AIRTABLE_TABLE_NAME", "Customers")
	v.SetDefault("AIRTABLE_WORK_OFFLINE", false)
	v.SetDefault("JWT_ISSUER", "tesseract-api")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("SERVICE_NAME", "tesseract-api")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
	v.SetDefault("PROFILING_ENABLED", false)
	v.SetDefault("PROFILING_APP_NAME", "tesseract-api")
	v.SetDefault("PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // .env file is optional

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	redirectURL := v.GetString("OAUTH_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = v.GetString("BASE_URL") + "/api/v1/auth/google/callback"
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Webhooks: WebhookConfig{
			AvailabilityURL: v.GetString("N8N_WEBHOOK_AVAILABILITY"),
			BookingURL:      v.GetString("N8N_WEBHOOK_BOOKING"),
			FollowupURL:     v.GetString("N8N_WEBHOOK_FOLLOWUP"),
			ChatURL:         v.GetString("N8N_WEBHOOK_URL"),
		},
		Email: EmailConfig{
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			FromAddress:  v.GetString("CONTACT_EMAIL_FROM"),
			ToAddress:    v.GetString("CONTACT_EMAIL_TO"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  redirectURL,
		},
		Session: SessionConfig{
			JWTSecret:    v.GetString("SESSION_JWT_SECRET"),
			JWTIssuer:    v.GetString("JWT_ISSUER"),
			TTLHours:     v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain: v.GetString("COOKIE_DOMAIN"),
			CookieSecure: v.GetBool("COOKIE_SECURE"),
		},
		CustomerStore: CustomerStoreConfig{
			APIKey:      v.GetString("AIRTABLE_API_KEY"),
			BaseID:      v.GetString("AIRTABLE_BASE_ID"),
			TableName:   v.GetString("AIRTABLE_TABLE_NAME"),
			WorkOffline: v.GetBool("AIRTABLE_WORK_OFFLINE"),
		},
		ContactLimit: ContactLimitConfig{
			MaxRequests:   v.GetInt("CONTACT_RATE_LIMIT"),
			WindowMinutes: v.GetInt("CONTACT_RATE_WINDOW_MINUTES"),
		},
		Wizard: WizardConfig{
			SessionTTLMinutes: v.GetInt("WIZARD_SESSION_TTL_MINUTES"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint: v.GetString("OTEL_EXPORTER_ENDPOINT"),
			ServiceName:      v.GetString("SERVICE_NAME"),
			ServiceVersion:   v.GetString("SERVICE_VERSION"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("PROFILING_ENABLED"),
			Endpoint:              v.GetString("PROFILING_ENDPOINT"),
			AppName:               v.GetString("PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are set. The email
// provider key and OAuth client credentials fail fast at startup; webhook
// URLs have fallbacks instead.
func (c *Config) Validate() error {
	if c.Email.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is required")
	}

	if c.GoogleOAuth.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.GoogleOAuth.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	if c.Session.JWTSecret == "" {
		return fmt.Errorf("SESSION_JWT_SECRET is required")
	}

	if !c.CustomerStore.WorkOffline {
		if c.CustomerStore.APIKey == "" {
			return fmt.Errorf("AIRTABLE_API_KEY is required when not in offline mode")
		}
		if c.CustomerStore.BaseID == "" {
			return fmt.Errorf("AIRTABLE_BASE_ID is required when not in offline mode")
		}
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.ContactLimit.MaxRequests <= 0 || c.ContactLimit.WindowMinutes <= 0 {
		return fmt.Errorf("contact rate limit settings must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
