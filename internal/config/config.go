package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Bootstrap
		Storage
		Mail
		LLM
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		// Path to the sqlite database file. When empty the application
		// runs degraded: reads return empty results, writes fail.
		Path string
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	Bootstrap struct {
		// OwnerOpenID is the external identity promoted to admin on first
		// login when no explicit role is supplied.
		OwnerOpenID string
		// Reserved super-admin account, re-seeded on every start.
		SuperAdminEmail    string
		SuperAdminPassword string
	}
	Storage struct {
		CloudinaryCloudName string
		CloudinaryAPIKey    string
		CloudinaryAPISecret string
	}
	Mail struct {
		MailjetAPIKey    string
		MailjetSecretKey string
		FromEmail        string
		FromName         string
	}
	LLM struct {
		BaseURL string
		APIKey  string
		Model   string
		Timeout time.Duration
	}
)

// Configured reports whether object storage credentials are present.
func (s Storage) Configured() bool {
	return s.CloudinaryCloudName != "" && s.CloudinaryAPIKey != "" && s.CloudinaryAPISecret != ""
}

// Configured reports whether outgoing mail credentials are present.
func (m Mail) Configured() bool {
	return m.MailjetAPIKey != "" && m.MailjetSecretKey != "" && m.FromEmail != ""
}

// Configured reports whether the text-generation service is reachable.
func (l LLM) Configured() bool {
	return l.BaseURL != "" && l.APIKey != ""
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", "")

	// Auth defaults
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)

	// Bootstrap defaults
	v.SetDefault("owner_open_id", "")
	v.SetDefault("superadmin_email", "superadmin@guest.com")
	v.SetDefault("superadmin_password", "guest.com@superadmin1")

	// Mail defaults
	v.SetDefault("mail_from_email", "")
	v.SetDefault("mail_from_name", "HomeFinder")

	// LLM defaults
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("llm_timeout", "30s")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Bootstrap: Bootstrap{
			OwnerOpenID:        v.GetString("OWNER_OPEN_ID"),
			SuperAdminEmail:    v.GetString("SUPERADMIN_EMAIL"),
			SuperAdminPassword: v.GetString("SUPERADMIN_PASSWORD"),
		},
		Storage: Storage{
			CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		},
		Mail: Mail{
			MailjetAPIKey:    v.GetString("MAILJET_API_KEY"),
			MailjetSecretKey: v.GetString("MAILJET_SECRET_KEY"),
			FromEmail:        v.GetString("MAIL_FROM_EMAIL"),
			FromName:         v.GetString("MAIL_FROM_NAME"),
		},
		LLM: LLM{
			BaseURL: v.GetString("LLM_BASE_URL"),
			APIKey:  v.GetString("LLM_API_KEY"),
			Model:   v.GetString("LLM_MODEL"),
			Timeout: v.GetDuration("LLM_TIMEOUT"),
		},
	}
}
