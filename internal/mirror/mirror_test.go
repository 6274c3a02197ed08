package mirror

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idilsaglam/mytodos/internal/kv"
	"github.com/idilsaglam/mytodos/internal/logging"
	"github.com/idilsaglam/mytodos/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const key = "TodoApp"

// recordingStore wraps a memory store, keeps every Set payload and can
// hold writes until released.
type recordingStore struct {
	*kv.Memory
	mu      sync.Mutex
	sets    []string
	hold    chan struct{}
	entered chan struct{}
	getErr  error
	setErr  error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Memory: kv.NewMemory()}
}

func (r *recordingStore) Get(ctx context.Context, k string) ([]byte, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.Memory.Get(ctx, k)
}

func (r *recordingStore) Set(ctx context.Context, k string, v []byte) error {
	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.hold != nil {
		<-r.hold
	}
	r.mu.Lock()
	r.sets = append(r.sets, string(v))
	r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	return r.Memory.Set(ctx, k, v)
}

func (r *recordingStore) writes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sets...)
}

func newMirror(t *testing.T, s kv.Store, opts ...Option) *Mirror {
	t.Helper()
	m := New(s, key, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, m.Close(ctx))
	})
	return m
}

func encode(t *testing.T, todos []model.Todo) string {
	t.Helper()
	b, err := Encode(todos)
	require.NoError(t, err)
	return string(b)
}

func TestLoadEmptyStorageUsesSeedNewestFirst(t *testing.T) {
	m := newMirror(t, kv.NewMemory())
	assert.Equal(t, Unloaded, m.State())

	res, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSeed, res.Source)
	assert.Equal(t, Loaded, m.State())

	want := model.Seed()
	model.SortByIDDesc(want)
	assert.Equal(t, want, res.Todos)
}

func TestLoadEmptyArrayUsesSeed(t *testing.T) {
	s := kv.NewMemory()
	require.NoError(t, s.Set(context.Background(), key, []byte("[]")))
	m := newMirror(t, s)

	res, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSeed, res.Source)
}

func TestLoadStoredSortsDescending(t *testing.T) {
	s := kv.NewMemory()
	stored := []model.Todo{{ID: 2, Title: "b"}, {ID: 9, Title: "i", Completed: true}, {ID: 5, Title: "e"}}
	require.NoError(t, s.Set(context.Background(), key, []byte(encode(t, stored))))
	m := newMirror(t, s)

	res, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceStored, res.Source)
	assert.Equal(t, []int{9, 5, 2}, ids(res.Todos))
}

func TestLoadMalformedStartsEmptyAndLogs(t *testing.T) {
	s := kv.NewMemory()
	require.NoError(t, s.Set(context.Background(), key, []byte(`{not json`)))
	var buf bytes.Buffer
	logger, err := logging.New(&buf, logging.DefaultOptions())
	require.NoError(t, err)
	m := newMirror(t, s, WithLogger(logger))

	res, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRecovered, res.Source)
	assert.Empty(t, res.Todos)
	assert.Equal(t, Loaded, m.State())
	assert.Contains(t, buf.String(), "load failed")

	// the malformed blob stays until the first mutation overwrites it
	b, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(b))
}

func TestLoadReadErrorStartsEmpty(t *testing.T) {
	s := newRecordingStore()
	s.getErr = errors.New("disk on fire")
	m := newMirror(t, s)

	res, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRecovered, res.Source)
	assert.Empty(t, res.Todos)
}

func TestLoadOnlyOnce(t *testing.T) {
	m := newMirror(t, kv.NewMemory())
	_, err := m.Load(context.Background())
	require.NoError(t, err)
	_, err = m.Load(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Equal(t, Loaded, m.State())
}

func TestWithSeed(t *testing.T) {
	m := newMirror(t, kv.NewMemory(), WithSeed(func() []model.Todo { return nil }))
	res, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Todos)
}

func TestSaveBeforeLoadIsDropped(t *testing.T) {
	s := newRecordingStore()
	m := newMirror(t, s)

	m.Save([]model.Todo{{ID: 1, Title: "x"}})
	require.NoError(t, m.Flush(context.Background()))
	assert.Empty(t, s.writes())
}

func TestSaveWritesFullSnapshot(t *testing.T) {
	s := newRecordingStore()
	m := newMirror(t, s)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	snap := []model.Todo{{ID: 6, Title: "x"}, {ID: 5, Title: "e"}}
	m.Save(snap)
	require.NoError(t, m.Flush(context.Background()))

	got, err := s.Memory.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, encode(t, snap), string(got))
}

func TestSaveCopiesSnapshot(t *testing.T) {
	s := newRecordingStore()
	m := newMirror(t, s)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	snap := []model.Todo{{ID: 1, Title: "before"}}
	m.Save(snap)
	snap[0].Title = "after"
	require.NoError(t, m.Flush(context.Background()))
	assert.Equal(t, []string{encode(t, []model.Todo{{ID: 1, Title: "before"}})}, s.writes())
}

func TestQueuedSnapshotsCoalesceInOrder(t *testing.T) {
	s := newRecordingStore()
	s.hold = make(chan struct{})
	s.entered = make(chan struct{}, 10)
	m := newMirror(t, s)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	first := []model.Todo{{ID: 1, Title: "one"}}
	m.Save(first)
	<-s.entered // writer is now blocked inside Set with the first snapshot

	m.Save([]model.Todo{{ID: 2, Title: "two"}})
	m.Save([]model.Todo{{ID: 3, Title: "three"}})
	last := []model.Todo{{ID: 4, Title: "four"}}
	m.Save(last)

	close(s.hold)
	require.NoError(t, m.Flush(context.Background()))
	assert.Equal(t, []string{encode(t, first), encode(t, last)}, s.writes())
}

func TestFlushHonoursContext(t *testing.T) {
	s := newRecordingStore()
	s.hold = make(chan struct{})
	m := newMirror(t, s)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	m.Save([]model.Todo{{ID: 1, Title: "x"}})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Flush(ctx), context.DeadlineExceeded)
	close(s.hold)
}

func TestWriteFailureIsLoggedNotReturned(t *testing.T) {
	s := newRecordingStore()
	s.setErr = errors.New("read-only fs")
	var buf bytes.Buffer
	logger, err := logging.New(&buf, logging.DefaultOptions())
	require.NoError(t, err)
	m := newMirror(t, s, WithLogger(logger))
	_, err = m.Load(context.Background())
	require.NoError(t, err)

	m.Save([]model.Todo{{ID: 1, Title: "x"}})
	require.NoError(t, m.Flush(context.Background()))
	assert.Contains(t, buf.String(), "save failed")
	assert.Len(t, s.writes(), 1, "no retry")
}

func TestCloseDrainsPending(t *testing.T) {
	s := newRecordingStore()
	m := New(s, key)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	snap := []model.Todo{{ID: 1, Title: "x"}}
	m.Save(snap)
	require.NoError(t, m.Close(context.Background()))
	require.NoError(t, m.Close(context.Background()))

	got, err := s.Memory.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, encode(t, snap), string(got))

	m.Save([]model.Todo{})
	assert.Len(t, s.writes(), 1)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "unloaded", Unloaded.String())
	assert.Equal(t, "seed", SourceSeed.String())
	assert.Equal(t, "stored", SourceStored.String())
	assert.Equal(t, "recovered", SourceRecovered.String())
}

func ids(todos []model.Todo) []int {
	out := make([]int, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}
