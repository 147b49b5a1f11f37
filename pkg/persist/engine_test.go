package persist

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/jsonstore/pkg/config"
	"github.com/arthur-debert/jsonstore/pkg/errors"
	"github.com/arthur-debert/jsonstore/pkg/filesystem"
	"github.com/arthur-debert/jsonstore/pkg/filesystem/testutil"
	"github.com/arthur-debert/jsonstore/pkg/tree"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storePath = "/cfg/app/store.json"

func newEngine(t *testing.T, delay time.Duration) (*Engine, *testutil.CountingFS) {
	t.Helper()
	fsys := testutil.NewCountingFS(filesystem.NewMemFS())
	cfg := &config.Config{Path: storePath, Indent: 2, Delay: delay, DirMode: 0755}
	return New(fsys, cfg, zerolog.Nop()), fsys
}

func set(path string, v any) func(*tree.Node) (bool, error) {
	return func(root *tree.Node) (bool, error) {
		return true, tree.Set(root, path, tree.MustFromValue(v))
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	e, _ := newEngine(t, 0)

	root, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, "{}", root.String())
}

func TestLoadInvalidFileIsEmpty(t *testing.T) {
	for _, content := range []string{"{not json", "", "[1, 2]", `"scalar"`} {
		t.Run(content, func(t *testing.T) {
			e, fsys := newEngine(t, 0)
			require.NoError(t, filesystem.EnsureDir(fsys, "/cfg/app", 0))
			require.NoError(t, fsys.WriteFile(storePath, []byte(content), 0600))

			root, err := e.Load()
			require.NoError(t, err)
			assert.Equal(t, "{}", root.String())
		})
	}
}

func TestLoadExistingFile(t *testing.T) {
	e, fsys := newEngine(t, 0)
	require.NoError(t, filesystem.EnsureDir(fsys, "/cfg/app", 0))
	require.NoError(t, fsys.WriteFile(storePath, []byte(`{"b": 1, "a": {"c": true}}`), 0600))

	root, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":{"c":true}}`, root.String())
}

func TestLoadPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	file := filepath.Join(t.TempDir(), "locked.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"a": 1}`), 0000))

	e := New(filesystem.NewOS(), &config.Config{Path: file, Indent: 2}, zerolog.Nop())
	_, err := e.Load()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPermission))
	assert.Contains(t, err.Error(), "permission denied reading")
	assert.True(t, stderrors.Is(err, os.ErrPermission))
}

func TestSyncSaveProvisionsAndWrites(t *testing.T) {
	e, fsys := newEngine(t, 0)

	require.NoError(t, e.Update(set("a.b", 1)))

	assert.Equal(t, []string{"/cfg", "/cfg/app"}, fsys.Mkdirs())
	w, ok := fsys.LastWrite()
	require.True(t, ok)
	assert.Equal(t, storePath, w.Name)
	assert.Equal(t, FileMode, w.Perm)
	assert.Equal(t, "{\n  \"a\": {\n    \"b\": 1\n  }\n}", string(w.Data))
	assert.False(t, e.Dirty())

	require.NoError(t, e.Update(set("c", 2)))
	assert.Len(t, fsys.Mkdirs(), 2, "directories are provisioned once")
	assert.Equal(t, 2, fsys.WriteCount())
}

func TestUpdateWithoutChangeDoesNotWrite(t *testing.T) {
	e, fsys := newEngine(t, 0)

	require.NoError(t, e.Update(func(*tree.Node) (bool, error) { return false, nil }))
	assert.Equal(t, 0, fsys.WriteCount())

	boom := stderrors.New("boom")
	err := e.Update(func(*tree.Node) (bool, error) { return true, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, fsys.WriteCount())
}

func TestDelayedWritesCoalesce(t *testing.T) {
	e, fsys := newEngine(t, 50*time.Millisecond)

	require.NoError(t, e.Update(set("a", 1)))
	require.NoError(t, e.Update(set("a", 2)))
	assert.True(t, e.Pending())
	assert.Equal(t, 0, fsys.WriteCount(), "nothing is written before the delay")

	require.Eventually(t, func() bool { return fsys.WriteCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, fsys.WriteCount())
	w, _ := fsys.LastWrite()
	assert.JSONEq(t, `{"a": 2}`, string(w.Data))
	assert.False(t, e.Pending())
	assert.False(t, e.Dirty())
}

func TestDelayedWriteReadsLiveTree(t *testing.T) {
	e, fsys := newEngine(t, 50*time.Millisecond)

	require.NoError(t, e.Update(set("a", 1)))
	// Mutating without going through Update still lands in the pending write.
	e.mu.Lock()
	require.NoError(t, tree.Set(e.data, "late", tree.NewBool(true)))
	e.mu.Unlock()

	require.Eventually(t, func() bool { return fsys.WriteCount() == 1 }, time.Second, 5*time.Millisecond)
	w, _ := fsys.LastWrite()
	assert.JSONEq(t, `{"a": 1, "late": true}`, string(w.Data))
}

func TestReadCancelsPendingWrite(t *testing.T) {
	e, fsys := newEngine(t, 30*time.Millisecond)

	require.NoError(t, e.Update(set("a", 1)))
	require.True(t, e.Pending())

	var seen string
	require.NoError(t, e.View(func(root *tree.Node) error {
		seen = root.String()
		return nil
	}))
	assert.Equal(t, `{"a":1}`, seen, "reads see memory")
	assert.False(t, e.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, fsys.WriteCount(), "the cancelled write never runs")
	assert.True(t, e.Dirty())

	require.NoError(t, e.Flush())
	assert.Equal(t, 1, fsys.WriteCount())
	assert.False(t, e.Dirty())
}

func TestLoadWhilePendingReturnsMemory(t *testing.T) {
	e, fsys := newEngine(t, time.Hour)
	require.NoError(t, filesystem.EnsureDir(fsys, "/cfg/app", 0))
	require.NoError(t, fsys.WriteFile(storePath, []byte(`{"disk": true}`), 0600))

	require.NoError(t, e.Update(set("memory", true)))

	root, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, `{"disk":true,"memory":true}`, root.String())
	assert.False(t, e.Pending())

	root, err = e.Load()
	require.NoError(t, err)
	assert.Equal(t, `{"disk":true}`, root.String(), "a second load reads disk again")
}

func TestFlushWritesImmediately(t *testing.T) {
	e, fsys := newEngine(t, time.Hour)

	require.NoError(t, e.Update(set("a", 1)))
	require.NoError(t, e.Flush())

	assert.Equal(t, 1, fsys.WriteCount())
	assert.False(t, e.Pending())

	require.NoError(t, e.Flush())
	assert.Equal(t, 1, fsys.WriteCount(), "nothing left to flush")
}

func TestCancelDropsPendingWrite(t *testing.T) {
	e, fsys := newEngine(t, 20*time.Millisecond)

	require.NoError(t, e.Update(set("a", 1)))
	assert.True(t, e.Cancel())
	assert.False(t, e.Cancel())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, fsys.WriteCount())
}

func TestWriteFailure(t *testing.T) {
	e, fsys := newEngine(t, 0)
	fsys.FailWrites(os.ErrPermission)

	err := e.Update(set("a", 1))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPermission))
	assert.True(t, e.Dirty())

	fsys.FailWrites(stderrors.New("disk full"))
	err = e.Save()
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
}

func TestDelayedWriteFailureIsDropped(t *testing.T) {
	e, fsys := newEngine(t, 10*time.Millisecond)
	fsys.FailWrites(stderrors.New("disk full"))

	require.NoError(t, e.Update(set("a", 1)))
	require.Eventually(t, func() bool { return !e.Pending() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, fsys.WriteCount())
	assert.True(t, e.Dirty(), "changes stay in memory")
}

func TestProvisionFailure(t *testing.T) {
	e, fsys := newEngine(t, 0)
	require.NoError(t, fsys.WriteFile("/cfg", []byte("not a dir"), 0600))

	err := e.Update(set("a", 1))
	assert.True(t, errors.IsErrorCode(err, errors.ErrDirCreate))
}

func TestReplace(t *testing.T) {
	e, fsys := newEngine(t, 0)

	require.NoError(t, e.Replace(tree.MustFromValue(map[string]any{"x": 1})))
	w, _ := fsys.LastWrite()
	assert.JSONEq(t, `{"x": 1}`, string(w.Data))

	err := e.Replace(tree.NewSequence())
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(e.Replace(nil), errors.ErrInvalidInput))
}

func TestSaveLoadsFirst(t *testing.T) {
	e, fsys := newEngine(t, 0)
	require.NoError(t, filesystem.EnsureDir(fsys, "/cfg/app", 0))
	require.NoError(t, fsys.WriteFile(storePath, []byte(`{"kept":1}`), 0600))

	require.NoError(t, e.Save())

	w, _ := fsys.LastWrite()
	assert.Equal(t, "{\n  \"kept\": 1\n}", string(w.Data))
}

func TestCompactIndent(t *testing.T) {
	fsys := testutil.NewCountingFS(filesystem.NewMemFS())
	e := New(fsys, &config.Config{Path: storePath, Indent: 0}, zerolog.Nop())

	require.NoError(t, e.Update(set("a", []any{1, 2})))
	w, _ := fsys.LastWrite()
	assert.Equal(t, `{"a":[1,2]}`, string(w.Data))
}

func TestUnlink(t *testing.T) {
	e, fsys := newEngine(t, 0)
	require.NoError(t, e.Update(set("a", 1)))

	require.NoError(t, e.Unlink())
	_, err := fsys.Stat(storePath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, e.Unlink(), "missing file is fine")
	assert.Equal(t, storePath, e.Path())
}
