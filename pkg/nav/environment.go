package nav

// History abstracts the session history of the hosting environment.
type History interface {
	// Push adds a history entry for the path.
	Push(path string)

	// Replace replaces the current history entry with the path.
	Replace(path string)

	// Location returns the current document location.
	Location() string
}

// MetaWriter abstracts document title and meta tag updates.
type MetaWriter interface {
	SetTitle(title string)
	SetMeta(name, content string)
}

// Reloader performs a full document navigation, abandoning the single-page
// transition. It is the escalation target for navigation failures.
type Reloader interface {
	Reload(path string)
}

// Env bundles the hosting environment's collaborators. Nil fields default
// to no-ops so tests can supply only what they observe.
type Env struct {
	History  History
	Meta     MetaWriter
	Reloader Reloader
}

func (e Env) withDefaults() Env {
	if e.History == nil {
		e.History = nopHistory{}
	}
	if e.Meta == nil {
		e.Meta = nopMeta{}
	}
	if e.Reloader == nil {
		e.Reloader = nopReloader{}
	}
	return e
}

type nopHistory struct{}

func (nopHistory) Push(string)      {}
func (nopHistory) Replace(string)   {}
func (nopHistory) Location() string { return "" }

type nopMeta struct{}

func (nopMeta) SetTitle(string)     {}
func (nopMeta) SetMeta(_, _ string) {}

type nopReloader struct{}

func (nopReloader) Reload(string) {}
