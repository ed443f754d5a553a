package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFields_ReachEncoder(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &zapLogger{logger: zap.New(core)}

	log.With(String("run", "r1")).Info("Source processed",
		Bool("allow_same_host", true),
		Strings("cors_origins", []string{"*"}),
		Int("records", 3),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "r1", fields["run"])
	assert.Equal(t, true, fields["allow_same_host"])
	assert.Equal(t, []interface{}{"*"}, fields["cors_origins"])
	assert.Equal(t, int64(3), fields["records"])
}
