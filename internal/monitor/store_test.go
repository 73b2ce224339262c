package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, capacity int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monitor_log.json")
	store, err := NewStore(path, capacity)
	require.NoError(t, err)
	return store, path
}

func TestAppendPersists(t *testing.T) {
	store, path := newTestStore(t, 10)

	count, err := store.Append(Record{Sender: "alice", SenderID: 1, ChatID: 3, Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []Record
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Sender)
	assert.NotZero(t, records[0].Timestamp)
	assert.NotEmpty(t, records[0].ReceivedAt)
}

func TestAppendCapsAtCapacity(t *testing.T) {
	store, _ := newTestStore(t, 3)

	for i := 0; i < 5; i++ {
		_, err := store.Append(Record{Sender: "alice", Text: string(rune('a' + i))})
		require.NoError(t, err)
	}

	records := store.Snapshot()
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].Text)
	assert.Equal(t, "e", records[2].Text)
}

func TestNewStoreLoadsExistingFile(t *testing.T) {
	store, path := newTestStore(t, 10)
	_, err := store.Append(Record{Sender: "alice", Text: "hi"})
	require.NoError(t, err)
	_, err = store.Append(Record{Sender: "bob", Text: "hey"})
	require.NoError(t, err)

	reloaded, err := NewStore(path, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Count())
}

func TestNewStoreTrimsOversizedFile(t *testing.T) {
	store, path := newTestStore(t, 10)
	for i := 0; i < 6; i++ {
		_, err := store.Append(Record{Sender: "alice", Text: "x"})
		require.NoError(t, err)
	}

	reloaded, err := NewStore(path, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Count())
}

func TestNewStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_log.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewStore(path, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count())
}

func TestNewStoreRejectsBadCapacity(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "log.json"), 0)
	require.Error(t, err)
}

func TestFilterNewestFirst(t *testing.T) {
	store, _ := newTestStore(t, 10)
	seed := []Record{
		{Sender: "alice", ChatID: 1, Text: "hello world"},
		{Sender: "bob", ChatID: 1, Text: "Hello Bob"},
		{Sender: "alice", ChatID: 2, Text: "secret plan"},
	}
	for _, rec := range seed {
		_, err := store.Append(rec)
		require.NoError(t, err)
	}

	all := store.Filter("", 0, "")
	require.Len(t, all, 3)
	assert.Equal(t, "secret plan", all[0].Text)

	bySender := store.Filter("alice", 0, "")
	require.Len(t, bySender, 2)

	byChat := store.Filter("", 2, "")
	require.Len(t, byChat, 1)
	assert.Equal(t, "secret plan", byChat[0].Text)

	bySearch := store.Filter("", 0, "HELLO")
	require.Len(t, bySearch, 2)

	combined := store.Filter("alice", 1, "hello")
	require.Len(t, combined, 1)
	assert.Equal(t, "hello world", combined[0].Text)
}

func TestStatsDistinctAndSorted(t *testing.T) {
	store, _ := newTestStore(t, 10)
	seed := []Record{
		{Sender: "bob", ChatID: 2, Text: "a", Encrypted: true},
		{Sender: "alice", ChatID: 1, Text: "b"},
		{Sender: "alice", ChatID: 2, Text: "c", Encrypted: true},
	}
	for _, rec := range seed {
		_, err := store.Append(rec)
		require.NoError(t, err)
	}

	stats := store.Stats()
	assert.Equal(t, 3, stats.TotalMessages)
	assert.Equal(t, []string{"alice", "bob"}, stats.Users)
	assert.Equal(t, []int64{1, 2}, stats.Chats)
	assert.Equal(t, 2, stats.Encrypted)
	assert.NotEmpty(t, stats.LastUpdate)
}

func TestAppendSaveFailureRollsBack(t *testing.T) {
	store, path := newTestStore(t, 10)
	_, err := store.Append(Record{Sender: "alice", Text: "hi"})
	require.NoError(t, err)

	// Replace the log file with a directory so the next save fails.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err = store.Append(Record{Sender: "bob", Text: "lost"})
	require.Error(t, err)

	assert.Equal(t, 1, store.Count())
	records := store.Snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Sender)
}

func TestClearPersistsEmptyArray(t *testing.T) {
	store, path := newTestStore(t, 10)
	_, err := store.Append(Record{Sender: "alice", Text: "hi"})
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	assert.Equal(t, 0, store.Count())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
