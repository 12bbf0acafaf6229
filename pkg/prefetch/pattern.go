package prefetch

import "strings"

// rule is one compiled pattern list entry.
type rule struct {
	negate  bool
	pattern string
}

// Matcher evaluates an ordered allow/deny pattern list. Entries prefixed
// with "!" deny; "*" matches exactly one path segment and "**" any number.
// Evaluation runs the whole list and the last matching entry wins, so a
// broad allow can be narrowed by later denials:
//
//	/docs/**
//	!/docs/internal/**
type Matcher struct {
	rules []rule
}

// NewMatcher compiles a pattern list.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r := rule{}
		if strings.HasPrefix(p, "!") {
			r.negate = true
			p = p[1:]
		}
		r.pattern = p
		m.rules = append(m.rules, r)
	}
	return m
}

// Match reports whether the path is selected by the pattern list.
func (m *Matcher) Match(path string) bool {
	matched := false
	for _, r := range m.rules {
		if matchPattern(r.pattern, path) {
			matched = !r.negate
		}
	}
	return matched
}

// Routes returns the literal (wildcard-free) entries that survive the full
// list, in order. These are the concrete routes the single strategy warms.
func (m *Matcher) Routes() []string {
	var out []string
	for _, r := range m.rules {
		if r.negate || strings.Contains(r.pattern, "*") {
			continue
		}
		if m.Match(r.pattern) {
			out = append(out, r.pattern)
		}
	}
	return out
}

func matchPattern(pattern, path string) bool {
	return matchSegments(splitPath(pattern), splitPath(path))
}

func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		// Greedy any-depth: try consuming zero or more segments.
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pat[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if pat[0] != "*" && pat[0] != segs[0] {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
