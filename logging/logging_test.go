package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDiagnosticLogAppendsOneLinePerFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mail-errors.log")
	diag := NewDiagnosticLog(path)

	require.NoError(t, diag.Write("mail failed", zap.Error(errors.New("dial tcp: timeout"))))
	require.NoError(t, diag.Write("mail failed again"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]\tmail failed\t`, lines[0])
	assert.Contains(t, lines[0], "dial tcp: timeout")
	assert.Contains(t, lines[1], "mail failed again")
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
	assert.Equal(t, "reply to jo***@example.com now", RedactText("reply to john@example.com now"))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)

	logger, err := New("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
