// Package store is a persistent, nested key-value store backed by a single
// JSON file.
//
// Values are addressed with dot paths; a backslash makes a dot part of a
// key:
//
//	s, err := store.New(store.Options{Name: "settings"})
//	if err != nil {
//	    return err
//	}
//	_ = s.Set("server.port", 8080)
//	_ = s.Set(`hosts.example\.com`, "10.0.0.1")
//	port, _ := s.Get("server.port") // 8080
//
// The file lives at $XDG_CONFIG_HOME/jsonstore/<name>.json unless Path,
// Home or Base say otherwise. Every mutation saves the document, either
// immediately or, with Delay set, as one write per burst of mutations.
//
// A Store is safe for concurrent use within one process. Nothing protects
// the file against other processes writing it at the same time; the last
// write wins.
package store
