package application

import "strings"

// DocsPathPrefix is always exempt so API introspection works before an
// organization exists.
const DocsPathPrefix = "/swagger"

// ExemptPathSet is the ordered list of path prefixes allowed to proceed
// without a resolved tenant. Read-only after process start.
type ExemptPathSet struct {
	prefixes []string
}

// NewExemptPathSet normalizes and stores the configured prefixes.
// Matching is case-insensitive prefix matching; the docs path space is
// exempt regardless of configuration.
func NewExemptPathSet(prefixes ...string) *ExemptPathSet {
	set := &ExemptPathSet{prefixes: make([]string, 0, len(prefixes))}
	for _, prefix := range prefixes {
		prefix = strings.ToLower(strings.TrimSpace(prefix))
		if prefix == "" {
			continue
		}
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}
		set.prefixes = append(set.prefixes, prefix)
	}
	return set
}

// Match reports whether the request path may run without a tenant.
func (s *ExemptPathSet) Match(path string) bool {
	path = strings.ToLower(path)
	if strings.HasPrefix(path, DocsPathPrefix) {
		return true
	}
	if s == nil {
		return false
	}
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Prefixes returns a copy of the configured prefixes, for logging.
func (s *ExemptPathSet) Prefixes() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.prefixes...)
}
