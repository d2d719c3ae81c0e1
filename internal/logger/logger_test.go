package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsCredentials(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.Info("login", "username", "sam", "auth_token", "abc.def.ghi", "password", "hunter2")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "sam", fields["username"])
	require.Equal(t, "[REDACTED]", fields["auth_token"])
	require.Equal(t, "[REDACTED]", fields["password"])
}

func TestSanitizeKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"key", "value", "orphan"})
	require.Equal(t, []interface{}{"key", "value", "orphan"}, out)
}
