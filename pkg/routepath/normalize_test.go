package routepath

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "root path", input: "/", want: "/"},
		{name: "simple path", input: "/about", want: "/about"},
		{name: "trailing slash removed", input: "/about/", want: "/about"},
		{name: "multiple slashes collapsed", input: "/users//123", want: "/users/123"},
		{name: "empty string becomes root", input: "", want: "/"},
		{name: "no leading slash", input: "about", want: "/about"},
		{name: "backslash rejected", input: "/users\\admin", wantErr: true},
		{name: "null byte rejected", input: "/users\x00admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Canonicalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCacheKeyStripsQueryAndFragment(t *testing.T) {
	n := NewNormalizer("/")

	// Same page under different queries/fragments must share one key.
	inputs := []string{"/docs/intro?x=1#h", "/docs/intro?x=2", "/docs/intro"}
	keys := make(map[string]bool)
	for _, in := range inputs {
		key, err := n.CacheKey(in)
		if err != nil {
			t.Fatalf("CacheKey(%q): %v", in, err)
		}
		keys[key] = true
	}
	if len(keys) != 1 {
		t.Fatalf("expected one shared cache key, got %v", keys)
	}
	if !keys["/docs/intro"] {
		t.Fatalf("expected key /docs/intro, got %v", keys)
	}
}

func TestCacheKeyAppliesBasePath(t *testing.T) {
	tests := []struct {
		name string
		base string
		raw  string
		want string
	}{
		{name: "root base", base: "/", raw: "/about", want: "/about"},
		{name: "app base qualifies", base: "/app", raw: "/about", want: "/app/about"},
		{name: "app base no double prefix", base: "/app", raw: "/app/about", want: "/app/about"},
		{name: "app base root", base: "/app", raw: "/", want: "/app"},
		{name: "base without slashes", base: "app", raw: "/about?q=1", want: "/app/about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.base)
			got, err := n.CacheKey(tt.raw)
			if err != nil {
				t.Fatalf("CacheKey(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("CacheKey(%q) with base %q = %q, want %q", tt.raw, tt.base, got, tt.want)
			}
		})
	}
}

func TestHistoryEntryKeepsQueryAndFragment(t *testing.T) {
	tests := []struct {
		name string
		base string
		raw  string
		want string
	}{
		{name: "query survives", base: "/", raw: "/docs/intro?x=1", want: "/docs/intro?x=1"},
		{name: "fragment survives", base: "/", raw: "/docs/intro#install", want: "/docs/intro#install"},
		{name: "query and fragment survive", base: "/", raw: "/docs/intro/?x=1#h", want: "/docs/intro?x=1#h"},
		{name: "base path qualifies the pathname only", base: "/app", raw: "/about?tab=2", want: "/app/about?tab=2"},
		{name: "bare path unchanged", base: "/", raw: "/about", want: "/about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.base)
			got, err := n.HistoryEntry(tt.raw)
			if err != nil {
				t.Fatalf("HistoryEntry(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("HistoryEntry(%q) with base %q = %q, want %q", tt.raw, tt.base, got, tt.want)
			}
		})
	}
}

func TestStripQueryFragment(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/a?b=c", "/a"},
		{"/a#frag", "/a"},
		{"/a?b=c#frag", "/a"},
		{"/a", "/a"},
	}
	for _, tt := range tests {
		if got := StripQueryFragment(tt.in); got != tt.want {
			t.Errorf("StripQueryFragment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
