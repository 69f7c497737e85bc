package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Production gets JSON on stderr,
// everything else a colored console encoder.
func New(level string, production bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// DiagnosticLog appends one timestamped line per failure to a plain text
// file, e.g. storage/mail-errors.log. The file is opened per write so it can
// be rotated or removed by an operator at any time.
type DiagnosticLog struct {
	path string
	mu   sync.Mutex
}

// NewDiagnosticLog returns a diagnostic log writing to path
func NewDiagnosticLog(path string) *DiagnosticLog {
	return &DiagnosticLog{path: path}
}

// Path returns the file the log appends to
func (d *DiagnosticLog) Path() string {
	return d.path
}

// Write appends msg and fields as a single line
func (d *DiagnosticLog) Write(msg string, fields ...zap.Field) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(diagnosticEncoderConfig()), zapcore.AddSync(f), zapcore.DebugLevel)
	logger := zap.New(core)
	logger.Error(msg, fields...)
	return logger.Sync()
}

func diagnosticEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("[2006-01-02 15:04:05]"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" -> "jo***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	if len(parts[0]) > 2 {
		return parts[0][:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// Email is a zap field holding a redacted email address
func Email(key, email string) zap.Field {
	if email == "" {
		return zap.String(key, "")
	}
	return zap.String(key, RedactEmail(email))
}

// RedactText masks every email address embedded in s
func RedactText(s string) string {
	return emailPattern.ReplaceAllStringFunc(s, RedactEmail)
}
