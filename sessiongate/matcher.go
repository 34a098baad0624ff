package sessiongate

import "strings"

var (
	defaultExcludedPrefixes = []string{"_next/static", "_next/image", "favicon.ico"}
	defaultExcludedExts     = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp"}
)

// Matcher decides which request paths the gate runs on.
//
// A path is excluded when, after its leading slash, it starts with one of the
// excluded prefixes, or when it ends with one of the excluded extensions.
// Both checks are case-sensitive.
type Matcher struct {
	prefixes   []string
	extensions []string
}

// DefaultMatcher excludes framework static assets, the favicon and common
// image files.
func DefaultMatcher() *Matcher {
	return NewMatcher(defaultExcludedPrefixes, defaultExcludedExts)
}

// NewMatcher builds a Matcher from explicit exclusion lists. Prefixes are
// given without a leading slash, extensions with their dot.
func NewMatcher(prefixes, extensions []string) *Matcher {
	m := &Matcher{
		prefixes:   make([]string, 0, len(prefixes)),
		extensions: make([]string, 0, len(extensions)),
	}
	for _, p := range prefixes {
		if p = strings.TrimPrefix(p, "/"); p != "" {
			m.prefixes = append(m.prefixes, p)
		}
	}
	for _, e := range extensions {
		if e != "" {
			m.extensions = append(m.extensions, e)
		}
	}
	return m
}

// Excluded reports whether the gate must not run for path.
func (m *Matcher) Excluded(path string) bool {
	rest := strings.TrimPrefix(path, "/")

	for _, p := range m.prefixes {
		if strings.HasPrefix(rest, p) {
			return true
		}
	}

	for _, e := range m.extensions {
		if strings.HasSuffix(rest, e) {
			return true
		}
	}

	return false
}

// Applies is the inverse of Excluded.
func (m *Matcher) Applies(path string) bool {
	return !m.Excluded(path)
}
