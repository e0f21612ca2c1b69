package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRenamesCoreKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Service: "rewardsd", Env: "test"})
	logger.Info("claim settled", slog.Uint64("epoch", 16))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "claim settled", line["message"])
	require.Equal(t, "INFO", line["severity"])
	require.Equal(t, "rewardsd", line["service"])
	require.Equal(t, "test", line["env"])
	require.Contains(t, line, "timestamp")
	require.EqualValues(t, 16, line["epoch"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Service: "rewardsd", Level: ParseLevel("warn")})
	logger.Info("dropped")
	require.Zero(t, buf.Len())
	logger.Warn("kept")
	require.NotZero(t, buf.Len())
}

func TestSetupWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewardsd.log")
	logger, closer := Setup(Options{Service: "rewardsd", File: path, MaxSizeMB: 1})
	logger.Info("hello")
	require.NoError(t, closer.Close())
	require.FileExists(t, path)
}

func TestNewRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Service: "rewardsd"})
	logger.Warn("token validation failed",
		slog.String("token", "eyJhbGciOiJIUzI1NiJ9.payload.sig"),
		slog.String("auditDsn", "postgres://rewards:hunter2@db/rewards"),
		slog.Group("auth", slog.String("hmacSecret", "s3cr3t-value")),
		slog.Uint64("epoch", 16))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "eyJh..."+RedactedValue, line["token"])
	require.Equal(t, RedactedValue, line["auditDsn"])
	require.Equal(t, RedactedValue, line["auth"].(map[string]any)["hmacSecret"])
	require.EqualValues(t, 16, line["epoch"])
	require.NotContains(t, buf.String(), "hunter2")
}

func TestMaskToken(t *testing.T) {
	require.Equal(t, "", MaskToken(""))
	require.Equal(t, RedactedValue, MaskToken("short"))
	masked := MaskToken("eyJhbGciOiJIUzI1NiJ9.payload")
	require.Equal(t, "eyJh..."+RedactedValue, masked)
	require.Equal(t, masked, MaskToken(masked))
	require.True(t, IsSensitive("Authorization"))
	require.False(t, IsSensitive("epoch"))
}
