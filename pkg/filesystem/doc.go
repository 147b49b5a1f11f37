// Package filesystem provides filesystem implementations for jsonstore and
// the directory provisioning used before the first write of a store.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an afero-backed filesystem.
package filesystem
