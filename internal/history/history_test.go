package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndList(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "history.db"))
	defer s.Close()

	s.Save(Message{SessionID: "a", Role: "user", Content: "hello"})
	s.Save(Message{SessionID: "a", Role: "assistant", Content: "", ToolCalls: `[{"id":"call_1"}]`})
	s.Save(Message{SessionID: "a", Role: "tool", Content: "done", ToolCallID: "call_1"})
	s.Save(Message{SessionID: "b", Role: "user", Content: "other session"})

	got := s.List("a")
	require.Len(t, got, 3)
	require.Equal(t, "user", got[0].Role)
	require.Equal(t, "hello", got[0].Content)
	require.Equal(t, `[{"id":"call_1"}]`, got[1].ToolCalls)
	require.Equal(t, "call_1", got[2].ToolCallID)
	require.False(t, got[0].CreatedAt.IsZero())

	require.Len(t, s.List("b"), 1)
	require.Empty(t, s.List("missing"))
}

func TestListSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s := Open(path)
	s.Save(Message{SessionID: "a", Role: "user", Content: "persisted"})
	require.NoError(t, s.Close())

	reopened := Open(path)
	defer reopened.Close()
	got := reopened.List("a")
	require.Len(t, got, 1)
	require.Equal(t, "persisted", got[0].Content)
}

func TestMemoryFallback(t *testing.T) {
	// An unopenable path degrades to memory-only storage.
	s := Open(filepath.Join(t.TempDir(), "no-such-dir", "history.db"))
	defer s.Close()

	s.Save(Message{SessionID: "a", Role: "user", Content: "in memory"})
	got := s.List("a")
	require.Len(t, got, 1)
	require.Equal(t, "in memory", got[0].Content)
}
