// Package config resolves the settings of a store from defaults, the user's
// TOML defaults file, the environment and explicit options, in increasing
// order of precedence.
//
// The defaults file lives at $XDG_CONFIG_HOME/jsonstore/config.toml unless
// JSONSTORE_CONFIG names another one. It and the JSONSTORE_* variables may
// set home, base, indent, delay and mkdir:
//
//	indent = 4
//	delay = "250ms"
//	mkdir = 0o700
package config
