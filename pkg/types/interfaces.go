package types

import (
	"io/fs"
)

// FS is the filesystem surface a store needs. It is satisfied by the OS
// filesystem and by in-memory implementations used in tests.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Remove(name string) error

	// Mkdir creates a single directory. It must report an existing entry
	// with an error matching fs.ErrExist.
	Mkdir(name string, perm fs.FileMode) error
}
