package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idilsaglam/mytodos/internal/kv"
	"github.com/idilsaglam/mytodos/internal/mirror"
	"github.com/idilsaglam/mytodos/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const key = "TodoApp"

func open(t *testing.T, s kv.Store) *Session {
	t.Helper()
	sess := New(mirror.New(s, key), nil)
	t.Cleanup(func() { require.NoError(t, sess.Close(context.Background())) })
	sess.Load(context.Background())
	return sess
}

func persisted(t *testing.T, s kv.Store) []model.Todo {
	t.Helper()
	b, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	todos, err := mirror.Decode(b)
	require.NoError(t, err)
	return todos
}

func put(t *testing.T, s kv.Store, todos []model.Todo) {
	t.Helper()
	b, err := mirror.Encode(todos)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), key, b))
}

func TestLoadFromEmptyStorage(t *testing.T) {
	s := kv.NewMemory()
	sess := open(t, s)

	assert.True(t, sess.Loaded())
	assert.Equal(t, mirror.SourceSeed, sess.Source())
	want := model.Seed()
	model.SortByIDDesc(want)
	assert.Equal(t, want, sess.All())

	// loading alone does not write
	_, err := s.Get(context.Background(), key)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestCreateScenario(t *testing.T) {
	s := kv.NewMemory()
	put(t, s, []model.Todo{{ID: 2, Title: "b"}, {ID: 5, Title: "e"}})
	sess := open(t, s)

	got, ok := sess.Create("x")
	require.True(t, ok)
	assert.Equal(t, 6, got.ID)
	assert.Equal(t, got, sess.All()[0])

	require.NoError(t, sess.Flush(context.Background()))
	assert.Equal(t, []model.Todo{
		{ID: 6, Title: "x"},
		{ID: 5, Title: "e"},
		{ID: 2, Title: "b"},
	}, persisted(t, s))
}

func TestSetTitleScenario(t *testing.T) {
	s := kv.NewMemory()
	sess := open(t, s)

	require.True(t, sess.SetTitle(2, "  hello  "))
	require.NoError(t, sess.Flush(context.Background()))

	for _, td := range persisted(t, s) {
		if td.ID == 2 {
			assert.Equal(t, "hello", td.Title)
			return
		}
	}
	t.Fatal("todo 2 not persisted")
}

func TestEveryMutationPersists(t *testing.T) {
	s := kv.NewMemory()
	sess := open(t, s)
	ctx := context.Background()

	require.True(t, sess.Toggle(1))
	require.NoError(t, sess.Flush(ctx))
	assert.Equal(t, sess.All(), persisted(t, s))

	require.True(t, sess.Remove(3))
	require.NoError(t, sess.Flush(ctx))
	assert.Equal(t, sess.All(), persisted(t, s))
	assert.Len(t, persisted(t, s), len(model.Seed())-1)
}

func TestNoopsDoNotPersist(t *testing.T) {
	s := kv.NewMemory()
	sess := open(t, s)

	_, ok := sess.Create("   ")
	assert.False(t, ok)
	assert.False(t, sess.Toggle(99))
	assert.False(t, sess.Remove(99))
	assert.False(t, sess.SetTitle(1, ""))
	require.NoError(t, sess.Flush(context.Background()))

	_, err := s.Get(context.Background(), key)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestSecondLoadKeepsState(t *testing.T) {
	sess := open(t, kv.NewMemory())
	sess.Create("mine")
	sess.Load(context.Background())
	assert.Equal(t, "mine", sess.All()[0].Title)
}

func TestStats(t *testing.T) {
	sess := open(t, kv.NewMemory())
	done, pending := sess.Stats()
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, pending)
}

func TestReopenSeesPersistedState(t *testing.T) {
	s := kv.NewMemory()
	first := New(mirror.New(s, key), nil)
	first.Load(context.Background())
	first.Create("carry over")
	require.NoError(t, first.Close(context.Background()))

	second := open(t, s)
	assert.Equal(t, mirror.SourceStored, second.Source())
	assert.Equal(t, "carry over", second.All()[0].Title)
	_, ok := second.Get(6)
	assert.True(t, ok)
}
