package bookmarks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

type memoryKV struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	getErr  error
	setErr  error
	setHits int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{blobs: map[string][]byte{}}
}

func (m *memoryKV) GetBlob(_ context.Context, owner string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.blobs[owner], nil
}

func (m *memoryKV) SetBlob(_ context.Context, owner string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.setHits++
	m.blobs[owner] = append([]byte(nil), blob...)
	return nil
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	kv.blobs["alice"] = []byte(`["codeforces:1984","leetcode:weekly-contest-400"]`)
	store := NewStore(kv, nil)

	before := store.Load(ctx, "alice").Keys()

	_, added, err := store.Toggle(ctx, "alice", "codechef:START140")
	require.NoError(t, err)
	assert.True(t, added)

	_, added, err = store.Toggle(ctx, "alice", "codechef:START140")
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, before, store.Load(ctx, "alice").Keys())
	assert.Equal(t, 2, kv.setHits, "every toggle persists the full set")
}

func TestTogglePersistsSortedArray(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	store := NewStore(kv, nil)

	for _, k := range []string{"leetcode:b", "codeforces:1", "codechef:A"} {
		_, _, err := store.Toggle(ctx, "", k)
		require.NoError(t, err)
	}

	assert.JSONEq(t, `["codechef:A","codeforces:1","leetcode:b"]`, string(kv.blobs[DefaultOwner]))
}

func TestToggleRejectsEmptyKey(t *testing.T) {
	_, _, err := NewStore(newMemoryKV(), nil).Toggle(context.Background(), "bob", "   ")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestToggleSurfacesWriteFailure(t *testing.T) {
	kv := newMemoryKV()
	kv.setErr = errors.New("disk full")

	_, _, err := NewStore(kv, nil).Toggle(context.Background(), "bob", "codeforces:1")
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.setErr)
}

func TestToggleReadFailureKeepsPersistedSet(t *testing.T) {
	kv := newMemoryKV()
	seeded := []byte(`["codeforces:1","codeforces:2","leetcode:weekly-contest-400"]`)
	kv.blobs["alice"] = append([]byte(nil), seeded...)
	kv.getErr = errors.New("i/o timeout")

	set, added, err := NewStore(kv, nil).Toggle(context.Background(), "alice", "codechef:START140")
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.getErr)
	assert.Nil(t, set)
	assert.False(t, added)
	assert.Equal(t, 0, kv.setHits)
	assert.JSONEq(t, string(seeded), string(kv.blobs["alice"]))
}

func TestLoadNeverFails(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		err  error
	}{
		{name: "absent"},
		{name: "corrupt json", blob: []byte(`{not json`)},
		{name: "wrong shape", blob: []byte(`{"keys":["a"]}`)},
		{name: "backend error", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemoryKV()
			kv.getErr = tt.err
			if tt.blob != nil {
				kv.blobs["carol"] = tt.blob
			}

			set := NewStore(kv, nil).Load(context.Background(), "carol")
			assert.NotNil(t, set)
			assert.Empty(t, set)
		})
	}
}

func TestToggleAfterCorruptDataStartsFresh(t *testing.T) {
	kv := newMemoryKV()
	kv.blobs["dave"] = []byte(`garbage`)
	store := NewStore(kv, nil)

	set, added, err := store.Toggle(context.Background(), "dave", "codeforces:1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"codeforces:1"}, set.Keys())
}

func TestResolve(t *testing.T) {
	contests := []domain.Contest{
		{ID: "1", Source: domain.SourceCodeforces},
		{ID: "weekly-contest-400", Source: domain.SourceLeetCode},
		{ID: "START140", Source: domain.SourceCodeChef},
	}
	set := Set{"leetcode:weekly-contest-400": {}, "codechef:START140": {}, "codeforces:999": {}}

	got := Resolve(set, contests)
	require.Len(t, got, 2)
	assert.Equal(t, "weekly-contest-400", got[0].ID)
	assert.Equal(t, "START140", got[1].ID)
}
