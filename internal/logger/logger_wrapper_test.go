package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leandrodaf/picoadk/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.Info("block released",
		log.Field().Int("frames", 256),
		log.Field().Uint8("note", 60),
		log.Field().Uint64("dropped", 3),
		log.Field().Bool("clamped", true),
		log.Field().Duration("period", 5*time.Millisecond),
		log.Field().Error("error", errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(256), fields["frames"])
	assert.Equal(t, uint64(3), fields["dropped"])
	assert.Equal(t, true, fields["clamped"])
	assert.Equal(t, 5*time.Millisecond, fields["period"])
	assert.Equal(t, "boom", fields["error"])
}

func TestSetLevelGatesDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.Debug("visible")
	log.SetLevel(contracts.WarnLevel)
	log.Debug("hidden")

	assert.Equal(t, 1, logs.FilterMessage("visible").Len())
	assert.Zero(t, logs.FilterMessage("hidden").Len())
}

func TestSetDestinationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picoadk.log")
	log := NewZapLogger()
	log.SetDestination(contracts.FileLog, path)
	log.Info("written to file", log.Field().String("transport", "loopback"))
	require.NoError(t, log.(*ZapLogger).Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"transport":"loopback"`)
}

func TestNopLoggerDiscards(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.Info("nothing", log.Field().Int("n", 1))
		log.Warn("nothing")
		log.Error("nothing")
		log.Debug("nothing")
	})
}
