package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/config"
)

func TestNewLoggerService_WithoutLicenseKey(t *testing.T) {
	svc := NewLoggerService(config.DefaultObservabilityConfig())
	require.NotNil(t, svc)
	assert.Nil(t, svc.GetApplication())

	// Shutdown on a disabled service is a no-op.
	svc.Shutdown()

	var nilService *LoggerService
	assert.Nil(t, nilService.GetApplication())
}

func TestNewLoggerWithService_Level(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	log := NewLoggerWithService(cfg, nil)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestNewLoggerWithService_FileSink(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.FilePath = filepath.Join(t.TempDir(), "storefront.log")

	log := NewLogger(cfg)
	log.Info().Str("reference", "ORD-test").Msg("order paid")

	data, err := os.ReadFile(cfg.Logging.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"reference":"ORD-test"`)
	assert.Contains(t, string(data), `"service":"storefront"`)
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	base := zerolog.Nop()
	assert.Equal(t, base, WithTraceContext(base, nil))
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, 6, GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, 4, GetPgxTraceLogLevel(zerolog.InfoLevel))
	assert.Equal(t, 3, GetPgxTraceLogLevel(zerolog.WarnLevel))
	assert.Equal(t, 2, GetPgxTraceLogLevel(zerolog.ErrorLevel))
	assert.Equal(t, 1, GetPgxTraceLogLevel(zerolog.Disabled))
}
