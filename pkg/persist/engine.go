package persist

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/jsonstore/pkg/config"
	"github.com/arthur-debert/jsonstore/pkg/errors"
	"github.com/arthur-debert/jsonstore/pkg/filesystem"
	"github.com/arthur-debert/jsonstore/pkg/logging"
	"github.com/arthur-debert/jsonstore/pkg/tree"
	"github.com/arthur-debert/jsonstore/pkg/types"
	"github.com/rs/zerolog"
)

// FileMode is the mode of the backing file: owner read/write only.
const FileMode fs.FileMode = 0600

// Engine owns the cached document of one store and its backing file.
type Engine struct {
	fs      types.FS
	path    string
	indent  int
	delay   time.Duration
	dirMode fs.FileMode
	logger  zerolog.Logger

	mu          sync.Mutex
	data        *tree.Node
	dirty       bool
	provisioned bool
	write       task
}

// New returns an engine for the file described by cfg.
func New(fsys types.FS, cfg *config.Config, logger zerolog.Logger) *Engine {
	return &Engine{
		fs:      fsys,
		path:    cfg.Path,
		indent:  cfg.Indent,
		delay:   cfg.Delay,
		dirMode: cfg.DirMode,
		logger:  logger.With().Str("path", cfg.Path).Logger(),
	}
}

// Path returns the backing file.
func (e *Engine) Path() string {
	return e.path
}

// Indent returns the serialization indent.
func (e *Engine) Indent() int {
	return e.indent
}

// Load reads the backing file into the cache and returns the document.
//
// While a write is pending, Load cancels it and returns the cached document
// instead. A missing or unparsable file yields an empty mapping. A
// permission error is returned with ErrPermission and leaves the cache
// untouched.
func (e *Engine) Load() (*tree.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked()
}

func (e *Engine) loadLocked() (*tree.Node, error) {
	if e.write.cancel() {
		e.logger.Debug().Msg("Pending write cancelled by load")
		return e.data, nil
	}

	done := logging.LogOperationStart(e.logger, "load")
	defer done()

	content, err := e.fs.ReadFile(e.path)
	switch {
	case err == nil:
	case stderrors.Is(err, fs.ErrNotExist):
		e.logger.Debug().Msg("Store file does not exist, starting empty")
		e.data = tree.NewMapping(nil)
		return e.data, nil
	case stderrors.Is(err, fs.ErrPermission):
		return nil, errors.Wrapf(err, errors.ErrPermission,
			"permission denied reading %s; the current user needs read and write access to this file", e.path).
			WithDetail("path", e.path)
	default:
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", e.path).
			WithDetail("path", e.path)
	}

	doc, err := tree.Decode(content)
	if err == nil && doc.Kind() != tree.Mapping {
		err = errors.Newf(errors.ErrParse, "top-level value is a %v, not a mapping", doc.Kind())
	}
	if err != nil {
		e.logger.Warn().Err(err).Msg("Store file is not valid, starting empty")
		e.data = tree.NewMapping(nil)
		return e.data, nil
	}

	e.logger.Debug().Int("keys", doc.Len()).Msg("Store loaded")
	e.data = doc
	return e.data, nil
}

// ensureLocked reconciles the cache before a read: a pending write is
// cancelled in favour of memory, and an empty cache is loaded from disk.
func (e *Engine) ensureLocked() (*tree.Node, error) {
	if e.write.pending() || e.data == nil {
		return e.loadLocked()
	}
	return e.data, nil
}

// View calls fn with the reconciled document. fn must not retain it.
func (e *Engine) View(fn func(root *tree.Node) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	root, err := e.ensureLocked()
	if err != nil {
		return err
	}
	return fn(root)
}

// Update calls fn with the reconciled document and saves when fn reports a
// change.
func (e *Engine) Update(fn func(root *tree.Node) (changed bool, err error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	root, err := e.ensureLocked()
	if err != nil {
		return err
	}
	changed, err := fn(root)
	if err != nil || !changed {
		return err
	}
	e.dirty = true
	return e.saveLocked()
}

// Replace swaps the whole document and saves it. root must be a mapping.
func (e *Engine) Replace(root *tree.Node) error {
	if root.Kind() != tree.Mapping {
		return errors.Newf(errors.ErrInvalidInput, "document must be a mapping, got %v", root.Kind())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.write.cancel()
	e.data = root
	e.dirty = true
	return e.saveLocked()
}

// Save persists the document, loading it first if nothing is cached.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.data == nil {
		if _, err := e.loadLocked(); err != nil {
			return err
		}
	}
	e.dirty = true
	return e.saveLocked()
}

func (e *Engine) saveLocked() error {
	if !e.provisioned {
		if err := filesystem.EnsureDir(e.fs, filepath.Dir(e.path), e.dirMode); err != nil {
			return err
		}
		e.provisioned = true
	}

	if e.delay <= 0 {
		return e.writeLocked()
	}

	e.write.schedule(e.delay, e.fire)
	e.logger.Debug().Dur("delay", e.delay).Msg("Write scheduled")
	return nil
}

// fire runs on the timer goroutine.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.write.fire(gen) {
		return
	}
	if err := e.writeLocked(); err != nil {
		e.logger.Error().Err(err).Msg("Delayed write failed, changes remain in memory only")
	}
}

func (e *Engine) writeLocked() error {
	done := logging.LogOperationStart(e.logger, "write")
	defer done()

	content, err := tree.Encode(e.data, e.indent)
	if err != nil {
		return errors.Wrap(err, errors.ErrEncode, "failed to encode store")
	}

	if err := e.fs.WriteFile(e.path, content, FileMode); err != nil {
		code := errors.ErrFileWrite
		if stderrors.Is(err, fs.ErrPermission) {
			code = errors.ErrPermission
		}
		return errors.Wrapf(err, code, "failed to write %s", e.path).WithDetail("path", e.path)
	}

	e.dirty = false
	e.logger.Debug().Int("bytes", len(content)).Msg("Store written")
	return nil
}

// Flush cancels a pending write and writes any unsaved changes now.
func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.write.cancel()
	if !e.dirty || e.data == nil {
		return nil
	}
	if !e.provisioned {
		if err := filesystem.EnsureDir(e.fs, filepath.Dir(e.path), e.dirMode); err != nil {
			return err
		}
		e.provisioned = true
	}
	return e.writeLocked()
}

// Cancel drops a pending write without writing and reports whether one was
// pending.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.write.cancel()
}

// Pending reports whether a delayed write is scheduled.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.write.pending()
}

// Dirty reports whether the cached document has changes not yet written.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Unlink cancels a pending write and removes the backing file. The cached
// document is kept. A missing file is not an error.
func (e *Engine) Unlink() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.write.cancel()
	e.dirty = false
	if err := e.fs.Remove(e.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, errors.ErrFileRemove, "failed to remove %s", e.path).
			WithDetail("path", e.path)
	}
	e.logger.Debug().Msg("Store file removed")
	return nil
}
