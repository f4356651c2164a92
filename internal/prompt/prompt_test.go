package prompt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_BuiltinWithPlaceholders(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)

	out, err := Load("", TypeCalendar, now, loc)
	require.NoError(t, err)
	require.Contains(t, out, "2025-08-20T22:30:00+07:00")
	require.Contains(t, out, "2025-08-20T00:00:00+07:00")
	require.NotContains(t, out, "{current_time}")
	require.NotContains(t, out, "{start_of_day}")
}

func TestLoad_FileOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := "Bây giờ là {current_time}."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks_agent_prompt.md"), []byte(custom), 0o644))

	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)

	out, err := Load(dir, TypeTasks, now, loc)
	require.NoError(t, err)
	require.Equal(t, "Bây giờ là 2025-08-20T22:30:00+07:00.", out)
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	loc := time.UTC
	out, err := Load(t.TempDir(), TypeGmail, time.Now(), loc)
	require.NoError(t, err)
	require.Contains(t, out, "Gmail Agent")
}

func TestLoad_UnknownType(t *testing.T) {
	_, err := Load("", "weather", time.Now(), time.UTC)
	require.Error(t, err)
	require.Contains(t, err.Error(), "loại agent không hợp lệ")
}

func TestKnown(t *testing.T) {
	for _, typ := range Types() {
		require.True(t, Known(typ))
	}
	require.False(t, Known("weather"))
}
