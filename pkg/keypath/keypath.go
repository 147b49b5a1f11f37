package keypath

import "strings"

const (
	// Separator delimits path levels.
	Separator = '.'

	// EscapeChar makes the following separator part of the key.
	EscapeChar = '\\'
)

// Split breaks path on every separator not preceded by EscapeChar and strips
// the escape from escaped separators. An empty path yields an empty slice.
// Nothing else is normalized: empty segments and whitespace are kept.
func Split(path string) []string {
	if path == "" {
		return []string{}
	}

	segments := make([]string, 0, strings.Count(path, string(Separator))+1)
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == EscapeChar && i+1 < len(path) && path[i+1] == Separator:
			b.WriteByte(Separator)
			i++
		case c == Separator:
			segments = append(segments, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(segments, b.String())
}

// Escape returns key with every separator escaped so that Split treats it as
// a single segment.
func Escape(key string) string {
	if strings.IndexByte(key, Separator) < 0 {
		return key
	}
	return strings.ReplaceAll(key, string(Separator), string([]byte{EscapeChar, Separator}))
}

// Join escapes each segment and joins them with the separator.
// Split(Join(s...)) returns s for any segments not ending in EscapeChar.
func Join(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = Escape(s)
	}
	return strings.Join(escaped, string(Separator))
}

// Parent splits path into the segments leading to the last level and the
// last segment itself. ok is false for an empty path.
func Parent(path string) (parent []string, last string, ok bool) {
	segments := Split(path)
	if len(segments) == 0 {
		return nil, "", false
	}
	return segments[:len(segments)-1], segments[len(segments)-1], true
}
