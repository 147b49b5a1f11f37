// Package testutil provides filesystem doubles for jsonstore tests.
package testutil

import (
	"io/fs"
	"sync"

	"github.com/arthur-debert/jsonstore/pkg/types"
)

// CountingFS wraps a types.FS and records every write. It is safe for use
// from timer goroutines.
type CountingFS struct {
	types.FS

	mu       sync.Mutex
	writes   []Write
	mkdirs   []string
	writeErr error
}

// Write is one recorded WriteFile call.
type Write struct {
	Name string
	Data []byte
	Perm fs.FileMode
}

// NewCountingFS wraps base.
func NewCountingFS(base types.FS) *CountingFS {
	return &CountingFS{FS: base}
}

// FailWrites makes every following WriteFile return err. A nil err restores
// normal behaviour.
func (c *CountingFS) FailWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// WriteFile implements types.FS
func (c *CountingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	c.mu.Lock()
	failure := c.writeErr
	if failure == nil {
		cp := make([]byte, len(data))
		copy(cp, data)
		c.writes = append(c.writes, Write{Name: name, Data: cp, Perm: perm})
	}
	c.mu.Unlock()

	if failure != nil {
		return failure
	}
	return c.FS.WriteFile(name, data, perm)
}

// Mkdir implements types.FS
func (c *CountingFS) Mkdir(name string, perm fs.FileMode) error {
	c.mu.Lock()
	c.mkdirs = append(c.mkdirs, name)
	c.mu.Unlock()
	return c.FS.Mkdir(name, perm)
}

// Writes returns a copy of the recorded writes.
func (c *CountingFS) Writes() []Write {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Write, len(c.writes))
	copy(out, c.writes)
	return out
}

// WriteCount returns the number of successful writes.
func (c *CountingFS) WriteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

// LastWrite returns the most recent write, if any.
func (c *CountingFS) LastWrite() (Write, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return Write{}, false
	}
	return c.writes[len(c.writes)-1], true
}

// Mkdirs returns every directory creation attempt in order.
func (c *CountingFS) Mkdirs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.mkdirs))
	copy(out, c.mkdirs)
	return out
}
