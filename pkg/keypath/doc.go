// Package keypath parses dot-delimited key paths.
//
// A key path addresses a location inside a nested document. A dot separates
// levels and a backslash-escaped dot is a literal dot inside one level's key:
//
//	keypath.Split("server.http.port")   // ["server", "http", "port"]
//	keypath.Split(`hosts.example\.com`) // ["hosts", "example.com"]
//	keypath.Split("")                   // [] (the whole document)
//
// Join is the inverse of Split and escapes dots found in each segment.
package keypath
