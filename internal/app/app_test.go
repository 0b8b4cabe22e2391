package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/gantt/internal/config"
	"github.com/rpggio/gantt/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestOpen_WiresServices(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "nested", "gantt.db")

	a, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ctx := context.Background()
	proj, err := a.Projects.Create(ctx, "t1", project.CreateRequest{Name: "Plan"})
	require.NoError(t, err)

	sess, err := a.Sessions.Open(ctx, "t1", proj.ID)
	require.NoError(t, err)
	require.NoError(t, a.Sessions.Save(ctx, "t1", sess.ID))

	require.NoError(t, a.APIKeys.Create(ctx, "t1", "secret", "test"))
	tenant, err := a.APIKeys.ResolveTenant(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, "t1", tenant)

	require.NotNil(t, a.MCPServer())
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	require.Equal(t, slog.LevelError, ParseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogger(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "msg=shown k=v")
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gantt.log")
	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	chunk := bytes.Repeat([]byte("x"), 1024*1024)
	for range 7 {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}
	_, err = w.Write([]byte("tail"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.LessOrEqual(t, info.Size(), int64(maxLogSizeBytes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasSuffix(data, []byte("tail")))
}
