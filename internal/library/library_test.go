package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "db", "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	require.NoError(t, lib.Init(t.Context()))

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lib.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return lib
}

func TestPutGet(t *testing.T) {
	lib := openTest(t)
	ctx := t.Context()

	require.NoError(t, lib.Put(ctx, "house", []byte(`[]`), 0))
	require.NoError(t, lib.Put(ctx, " house ", []byte(`[{"type":"Line"}]`), 1))

	s, err := lib.Get(ctx, "house")
	require.NoError(t, err)
	assert.Equal(t, "house", s.Name)
	assert.Equal(t, `[{"type":"Line"}]`, string(s.Data))
	assert.Equal(t, 1, s.Shapes)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 2, 0, 0, time.UTC), s.UpdatedAt.UTC())
}

func TestGetMissing(t *testing.T) {
	lib := openTest(t)
	_, err := lib.Get(t.Context(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	lib := openTest(t)
	ctx := t.Context()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, lib.Put(ctx, name, []byte(`[]`), 0))
	}
	require.NoError(t, lib.Put(ctx, "a", []byte(`[]`), 0))

	list, err := lib.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, s := range list {
		names = append(names, s.Name)
		assert.Nil(t, s.Data)
	}
	assert.Equal(t, []string{"a", "c", "b"}, names)
}

func TestDelete(t *testing.T) {
	lib := openTest(t)
	ctx := t.Context()
	require.NoError(t, lib.Put(ctx, "x", []byte(`[]`), 0))
	require.NoError(t, lib.Delete(ctx, "x"))
	assert.ErrorIs(t, lib.Delete(ctx, "x"), ErrNotFound)

	list, err := lib.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPutRejectsEmptyName(t *testing.T) {
	lib := openTest(t)
	assert.Error(t, lib.Put(t.Context(), "  ", nil, 0))
}
