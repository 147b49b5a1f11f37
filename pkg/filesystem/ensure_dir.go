package filesystem

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jsonstore/pkg/errors"
	"github.com/arthur-debert/jsonstore/pkg/types"
)

// DefaultDirMode is used for directories created before the first write.
const DefaultDirMode fs.FileMode = 0755

// EnsureDir creates dir and every missing parent, one level at a time,
// starting from the filesystem root (or the working directory for a
// relative dir).
//
// Each level is created unconditionally. An entry that already exists is
// accepted when it is a directory, which keeps the operation idempotent and
// safe when another process creates the same path concurrently. An entry
// that exists but is not a directory, or any other failure, is returned as
// an ErrDirCreate error.
func EnsureDir(fsys types.FS, dir string, perm fs.FileMode) error {
	if dir == "" {
		return errors.New(errors.ErrInvalidInput, "directory path must not be empty")
	}
	if perm == 0 {
		perm = DefaultDirMode
	}

	dir = filepath.Clean(dir)
	vol := filepath.VolumeName(dir)
	rest := dir[len(vol):]

	cur := vol
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		cur += string(filepath.Separator)
	}
	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		if part == "" || part == "." {
			continue
		}
		cur = filepath.Join(cur, part)
		if err := mkdirOne(fsys, cur, perm); err != nil {
			return err
		}
	}
	return nil
}

func mkdirOne(fsys types.FS, path string, perm fs.FileMode) error {
	err := fsys.Mkdir(path, perm)
	if err == nil {
		return nil
	}
	if !stderrors.Is(err, fs.ErrExist) {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", path).
			WithDetail("path", path)
	}

	info, statErr := fsys.Stat(path)
	if statErr != nil {
		return errors.Wrapf(statErr, errors.ErrDirCreate, "failed to inspect existing entry %s", path).
			WithDetail("path", path)
	}
	if !info.IsDir() {
		return errors.Wrapf(err, errors.ErrDirCreate, "%s exists and is not a directory", path).
			WithDetail("path", path)
	}
	return nil
}
