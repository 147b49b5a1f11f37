// Package paths builds the default on-disk location of a store.
//
// A store named "settings" lives, by default, at
//
//	$XDG_CONFIG_HOME/jsonstore/settings.json
//
// where XDG_CONFIG_HOME falls back to the platform user-config directory
// (~/.config on Linux, ~/Library/Application Support on macOS, %LOCALAPPDATA%
// on Windows) as resolved by github.com/adrg/xdg.
//
// # Environment Variables
//
//   - XDG_CONFIG_HOME: root of the default store location
//   - XDG_STATE_HOME: root of the log file location
package paths
