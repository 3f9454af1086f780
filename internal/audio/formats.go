package audio

import (
	"path/filepath"
	"sort"
	"strings"
)

// FormatSet is the set of recognized audio file extensions, stored
// lowercase with a leading dot.
type FormatSet map[string]struct{}

// NewFormatSet builds a FormatSet. "wav", ".WAV" and ".wav" are equivalent.
func NewFormatSet(exts ...string) FormatSet {
	set := make(FormatSet, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

// Recognized reports whether name has a recognized extension.
func (s FormatSet) Recognized(name string) bool {
	_, ok := s[strings.ToLower(filepath.Ext(name))]
	return ok
}

// List returns the extensions in sorted order.
func (s FormatSet) List() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
