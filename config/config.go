package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail transports
const (
	TransportSendmail = "sendmail"
	TransportSMTP     = "smtp"
	TransportSES      = "ses"
)

// NotifyFailureMode decides whether a failed notification fails the request
type NotifyFailureMode string

const (
	// NotifyFatal sends synchronously and reports failures to the client
	NotifyFatal NotifyFailureMode = "fatal"
	// NotifyBestEffort answers first and sends in the background
	NotifyBestEffort NotifyFailureMode = "best_effort"
)

// Config holds all process configuration. It is built once at start and
// passed to the components that need it.
type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	StorageDir     string
	DatabasePath   string
	AllowedOrigins []string
	UseHTTPS       bool
	MaxBodyBytes   int64

	Mail   MailConfig
	Notify NotifyConfig
	CMS    CMSConfig
	Cache  CacheConfig
	Sheets SheetsConfig
	OIDC   OIDCConfig
}

// MailConfig selects and configures the notification transport
type MailConfig struct {
	Transport    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPSecure   bool
	SendmailPath string
	To           string
	From         string
	ReplyTo      string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
}

// NotifyConfig controls the notification dispatch policy
type NotifyConfig struct {
	FailureMode NotifyFailureMode
	Timeout     time.Duration
}

// CMSConfig points at the hosted content store
type CMSConfig struct {
	ProjectID        string
	Dataset          string
	APIVersion       string
	ReadToken        string
	RevalidateSecret string
	SiteURL          string
}

// Configured reports whether CMS reads are possible
func (c CMSConfig) Configured() bool {
	return c.ProjectID != "" && c.Dataset != ""
}

// CacheConfig configures the content cache
type CacheConfig struct {
	TTL      time.Duration
	RedisURL string
}

// SheetsConfig selects the remote spreadsheet target. AppsScriptURL wins when
// both are set.
type SheetsConfig struct {
	AppsScriptURL   string
	SheetID         string
	Range           string
	CredentialsPath string
}

// Enabled reports whether a spreadsheet target is configured
func (c SheetsConfig) Enabled() bool {
	return c.AppsScriptURL != "" || c.SheetID != ""
}

// OIDCConfig configures staff login for the admin export routes
type OIDCConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether admin login is configured
func (c OIDCConfig) Enabled() bool {
	return c.Domain != "" && c.ClientID != ""
}

// LoadEnvFile loads variables from a .env file if it exists. Variables already
// set in the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	storageDir := getEnv("STORAGE_DIR", "storage")

	smtpPort, err := getInt("SMTP_PORT", 465)
	if err != nil {
		return nil, err
	}
	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := getDuration("NOTIFY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	smtpSecure := smtpPort == 465
	if v := os.Getenv("SMTP_SECURE"); v != "" {
		smtpSecure = v == "true"
	}

	mailTo := getEnv("MAIL_TO", "info@vukatravels.co.uk")
	mailFrom := os.Getenv("MAIL_FROM")
	if mailFrom == "" {
		mailFrom = getEnv("SMTP_USER", mailTo)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StorageDir:     storageDir,
		DatabasePath:   getEnv("DATABASE_PATH", filepath.Join(storageDir, "site.db")),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		UseHTTPS:       os.Getenv("USE_HTTPS") == "true",
		MaxBodyBytes:   int64(maxBody),
		Mail: MailConfig{
			Transport:    strings.ToLower(getEnv("MAIL_TRANSPORT", TransportSendmail)),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     smtpPort,
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPass:     os.Getenv("SMTP_PASS"),
			SMTPSecure:   smtpSecure,
			SendmailPath: getEnv("SENDMAIL_PATH", "/usr/sbin/sendmail"),
			To:           mailTo,
			From:         mailFrom,
			ReplyTo:      os.Getenv("MAIL_REPLY_TO"),
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		Notify: NotifyConfig{
			FailureMode: NotifyFailureMode(strings.ToLower(getEnv("NOTIFY_FAILURE_MODE", string(NotifyFatal)))),
			Timeout:     notifyTimeout,
		},
		CMS: CMSConfig{
			ProjectID:        os.Getenv("SANITY_PROJECT_ID"),
			Dataset:          getEnv("SANITY_DATASET", "production"),
			APIVersion:       getEnv("SANITY_API_VERSION", "2025-02-19"),
			ReadToken:        os.Getenv("SANITY_API_READ_TOKEN"),
			RevalidateSecret: os.Getenv("SANITY_REVALIDATE_SECRET"),
			SiteURL:          getEnv("SITE_URL", "http://localhost:8080"),
		},
		Cache: CacheConfig{
			TTL:      cacheTTL,
			RedisURL: os.Getenv("REDIS_URL"),
		},
		Sheets: SheetsConfig{
			AppsScriptURL:   os.Getenv("SHEETS_APPS_SCRIPT_URL"),
			SheetID:         os.Getenv("SHEETS_SHEET_ID"),
			Range:           getEnv("SHEETS_RANGE", "Sheet1!A1"),
			CredentialsPath: getEnv("SHEETS_CREDENTIALS_PATH", filepath.Join(storageDir, "sheets-credentials.json")),
		},
		OIDC: OIDCConfig{
			Domain:       os.Getenv("OIDC_DOMAIN"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("OIDC_CALLBACK_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option combinations that cannot work at runtime
func (c *Config) Validate() error {
	switch c.Mail.Transport {
	case TransportSendmail, TransportSES:
	case TransportSMTP:
		if c.Mail.SMTPHost == "" || c.Mail.SMTPUser == "" || c.Mail.SMTPPass == "" {
			return errors.New("SMTP configuration is missing: SMTP_HOST, SMTP_USER and SMTP_PASS are required")
		}
	default:
		return fmt.Errorf("unknown MAIL_TRANSPORT %q", c.Mail.Transport)
	}

	switch c.Notify.FailureMode {
	case NotifyFatal, NotifyBestEffort:
	default:
		return fmt.Errorf("unknown NOTIFY_FAILURE_MODE %q (want fatal or best_effort)", c.Notify.FailureMode)
	}

	if c.Sheets.AppsScriptURL == "" && c.Sheets.SheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("SHEETS_CREDENTIALS_PATH is required with SHEETS_SHEET_ID")
	}

	if c.OIDC.Enabled() && (c.OIDC.ClientSecret == "" || c.OIDC.CallbackURL == "") {
		return errors.New("OIDC_CLIENT_SECRET and OIDC_CALLBACK_URL are required with OIDC_DOMAIN")
	}

	return nil
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CSVPath is the authoritative submission log
func (c *Config) CSVPath() string {
	return filepath.Join(c.StorageDir, "submissions.csv")
}

// XLSPath is the spreadsheet-shaped export regenerated from the log
func (c *Config) XLSPath() string {
	return filepath.Join(c.StorageDir, "submissions.xls")
}

// MailErrorLogPath collects notification failures
func (c *Config) MailErrorLogPath() string {
	return filepath.Join(c.StorageDir, "mail-errors.log")
}

// SheetsErrorLogPath collects spreadsheet append failures
func (c *Config) SheetsErrorLogPath() string {
	return filepath.Join(c.StorageDir, "sheets-errors.log")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
