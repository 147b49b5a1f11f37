// Package types holds interfaces shared across jsonstore packages.
package types
