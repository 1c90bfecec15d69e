package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initWorkspace builds a workspace with the given logging config and
// initializes the package against it.
func initWorkspace(t *testing.T, configYAML string) string {
	t.Helper()
	ws := t.TempDir()

	if configYAML != "" {
		dir := filepath.Join(ws, ".cleandesk")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644))
	}

	require.NoError(t, Initialize(ws))
	t.Cleanup(CloseAll)
	return ws
}

func TestDisabledByDefault(t *testing.T) {
	ws := initWorkspace(t, "")

	assert.False(t, IsDebugMode())
	assert.False(t, IsCategoryEnabled(CategoryClean))

	// Writes must be silent no-ops.
	Clean("this should go nowhere")
	_, err := os.Stat(filepath.Join(ws, ".cleandesk", "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir created in production mode")
}

func TestDebugModeWritesCategoryFiles(t *testing.T) {
	ws := initWorkspace(t, `
logging:
  debug_mode: true
  level: debug
`)

	require.True(t, IsDebugMode())
	Upload("uploaded %d file(s)", 3)
	UploadError("server said no")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".cleandesk", "logs"))
	require.NoError(t, err)

	var uploadLog string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".log" && len(e.Name()) > 10 && e.Name()[11:] == "upload.log" {
			uploadLog = filepath.Join(ws, ".cleandesk", "logs", e.Name())
		}
	}
	require.NotEmpty(t, uploadLog, "no upload log file written")

	data, err := os.ReadFile(uploadLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "uploaded 3 file(s)")
	assert.Contains(t, string(data), "[ERROR] server said no")
}

func TestCategoryDisable(t *testing.T) {
	initWorkspace(t, `
logging:
  debug_mode: true
  level: info
  categories:
    watch: false
`)

	assert.False(t, IsCategoryEnabled(CategoryWatch))
	assert.True(t, IsCategoryEnabled(CategoryClean))
}

func TestLevelFiltersDebug(t *testing.T) {
	ws := initWorkspace(t, `
logging:
  debug_mode: true
  level: info
`)

	SessionDebug("too detailed to keep")
	Session("worth keeping")
	CloseAll()

	logsDir := filepath.Join(ws, ".cleandesk", "logs")
	entries, err := os.ReadDir(logsDir)
	require.NoError(t, err)

	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(logsDir, e.Name()))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "too detailed to keep")
	}
}
