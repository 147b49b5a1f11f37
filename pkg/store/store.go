package store

import (
	"github.com/arthur-debert/jsonstore/pkg/config"
	"github.com/arthur-debert/jsonstore/pkg/errors"
	"github.com/arthur-debert/jsonstore/pkg/filesystem"
	"github.com/arthur-debert/jsonstore/pkg/logging"
	"github.com/arthur-debert/jsonstore/pkg/persist"
	"github.com/arthur-debert/jsonstore/pkg/tree"
	"github.com/arthur-debert/jsonstore/pkg/types"
	"github.com/rs/zerolog"
)

// Options configure a Store. See config.Options for the meaning of each
// setting; FS and Logger are optional collaborators.
type Options struct {
	config.Options

	// FS is the filesystem the store reads and writes. Defaults to the OS.
	FS types.FS

	// Logger receives debug and error events. Defaults to
	// logging.GetLogger("store").
	Logger *zerolog.Logger
}

// Store is a JSON file exposed as a nested key-value tree.
type Store struct {
	cfg    *config.Config
	engine *persist.Engine
	logger zerolog.Logger
}

// New resolves the configuration and returns a Store. The file is not read
// until the first access.
func New(opts Options) (*Store, error) {
	cfg, err := config.Resolve(opts.Options)
	if err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	logger := logging.GetLogger("store")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("store", cfg.Name).Logger()
	logger.Debug().Str("config", cfg.String()).Msg("Store opened")

	return &Store{
		cfg:    cfg,
		engine: persist.New(fsys, cfg, logger),
		logger: logger,
	}, nil
}

// Name returns the store name.
func (s *Store) Name() string { return s.cfg.Name }

// Path returns the backing file.
func (s *Store) Path() string { return s.cfg.Path }

// Config returns a copy of the resolved configuration.
func (s *Store) Config() config.Config { return *s.cfg }

// Set stores value at path, creating intermediate mappings and replacing
// anything in the way. value may be any JSON-marshalable Go value or a
// *tree.Node; nodes are copied, so a node obtained from Get may be stored
// back anywhere.
func (s *Store) Set(path string, value any) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path must not be empty")
	}
	node, err := tree.FromValue(value)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "cannot store value at %q", path)
	}
	return s.persist(func(root *tree.Node) (bool, error) {
		return true, tree.Set(root, path, node)
	})
}

// SetMany stores every entry of values, treating each key as a path, and
// saves once.
func (s *Store) SetMany(values map[string]any) error {
	m, err := tree.FromValue(values)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "cannot store values")
	}
	for _, key := range m.Map().Keys() {
		if key == "" {
			return errors.New(errors.ErrInvalidInput, "path must not be empty")
		}
	}
	return s.persist(func(root *tree.Node) (bool, error) {
		changed := false
		var err error
		m.Map().Range(func(key string, v *tree.Node) bool {
			err = tree.Set(root, key, v)
			changed = changed || err == nil
			return err == nil
		})
		return changed, err
	})
}

// Get returns the node at path, or nil when nothing is stored there. An
// empty path returns the whole document. The node is shared with the
// store: modify a Clone instead.
func (s *Store) Get(path string) (*tree.Node, error) {
	var out *tree.Node
	err := s.ensureLoaded(func(root *tree.Node) error {
		out = tree.Get(root, path)
		return nil
	})
	return out, err
}

// Value is like Get but returns plain Go values; see tree.Node.Interface.
// ok is false when nothing is stored at path.
func (s *Store) Value(path string) (value any, ok bool, err error) {
	n, err := s.Get(path)
	if err != nil || n == nil {
		return nil, false, err
	}
	return n.Interface(), true, nil
}

// Has reports whether a value, including null, is stored at path.
func (s *Store) Has(path string) (bool, error) {
	var out bool
	err := s.ensureLoaded(func(root *tree.Node) error {
		out = tree.Has(root, path)
		return nil
	})
	return out, err
}

// HasOwn reports whether path names an existing entry of its parent.
func (s *Store) HasOwn(path string) (bool, error) {
	var out bool
	err := s.ensureLoaded(func(root *tree.Node) error {
		out = tree.HasOwn(root, path)
		return nil
	})
	return out, err
}

// Del removes every given path and saves once if anything was removed. It
// reports whether anything was removed. Only mapping entries are removed:
// a path such as "list.0" that Has reports inside a sequence is left alone.
func (s *Store) Del(paths ...string) (bool, error) {
	var deleted bool
	err := s.persist(func(root *tree.Node) (bool, error) {
		for _, p := range paths {
			if tree.Del(root, p) {
				deleted = true
			}
		}
		return deleted, nil
	})
	return deleted, err
}

// Union adds values to the sequence at path, dropping duplicate scalars,
// and always saves.
func (s *Store) Union(path string, values ...any) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path must not be empty")
	}
	nodes := make([]*tree.Node, len(values))
	for i, v := range values {
		n, err := tree.FromValue(v)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "cannot add value to %q", path)
		}
		nodes[i] = n
	}
	return s.persist(func(root *tree.Node) (bool, error) {
		return true, tree.Union(root, path, nodes...)
	})
}

// Clone returns a deep copy of the node at path (the whole document for an
// empty path), or nil when nothing is stored there.
func (s *Store) Clone(path string) (*tree.Node, error) {
	var out *tree.Node
	err := s.ensureLoaded(func(root *tree.Node) error {
		out = tree.Clone(tree.Get(root, path))
		return nil
	})
	return out, err
}

// Clear empties the document and saves it.
func (s *Store) Clear() error {
	s.logger.Debug().Msg("Clearing store")
	return s.engine.Replace(tree.NewMapping(nil))
}

// JSON renders the document with the configured indent.
func (s *Store) JSON() (string, error) {
	var out []byte
	err := s.ensureLoaded(func(root *tree.Node) error {
		var err error
		out, err = tree.Encode(root, s.engine.Indent())
		if err != nil {
			return errors.Wrap(err, errors.ErrEncode, "failed to encode store")
		}
		return nil
	})
	return string(out), err
}

// Data returns a deep copy of the whole document.
func (s *Store) Data() (*tree.Node, error) {
	return s.Clone("")
}

// SetData replaces the whole document, which must be a mapping, and saves
// it. The store keeps a deep copy of root.
func (s *Store) SetData(root *tree.Node) error {
	return s.engine.Replace(tree.Clone(root))
}

// Save writes the document following the write policy.
func (s *Store) Save() error {
	return s.engine.Save()
}

// Load re-reads the backing file, unless a delayed write is pending, in
// which case that write is cancelled and memory is kept. It returns a deep
// copy of the resulting document.
func (s *Store) Load() (*tree.Node, error) {
	if _, err := s.engine.Load(); err != nil {
		return nil, err
	}
	return s.Clone("")
}

// Flush writes unsaved changes now, cancelling any delayed write.
func (s *Store) Flush() error {
	return s.engine.Flush()
}

// Close flushes unsaved changes. The store stays usable.
func (s *Store) Close() error {
	return s.Flush()
}

// Unlink removes the backing file. The in-memory document is kept and is
// written again by the next mutation.
func (s *Store) Unlink() error {
	return s.engine.Unlink()
}

// ensureLoaded runs fn against the reconciled document.
func (s *Store) ensureLoaded(fn func(root *tree.Node) error) error {
	return s.engine.View(fn)
}

// persist runs fn against the reconciled document and saves when fn
// reports a change.
func (s *Store) persist(fn func(root *tree.Node) (bool, error)) error {
	return s.engine.Update(fn)
}
