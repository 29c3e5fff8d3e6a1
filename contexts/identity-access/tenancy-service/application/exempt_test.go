package application

import "testing"

func TestExemptPathMatchIsCaseInsensitivePrefix(t *testing.T) {
	set := NewExemptPathSet("/healthz", "/API/Organizations")

	cases := []struct {
		path string
		want bool
	}{
		{"/healthz", true},
		{"/HEALTHZ", true},
		{"/api/organizations", true},
		{"/api/organizations/t1/suspend", true},
		{"/api/contacts", false},
		{"/", false},
	}
	for _, tc := range cases {
		if got := set.Match(tc.path); got != tc.want {
			t.Fatalf("path %q: expected %v, got %v", tc.path, tc.want, got)
		}
	}
}

func TestDocsPathSpaceAlwaysExempt(t *testing.T) {
	set := NewExemptPathSet()
	if !set.Match("/swagger/index.html") {
		t.Fatalf("docs path space must be exempt")
	}

	var nilSet *ExemptPathSet
	if !nilSet.Match("/swagger/doc.json") {
		t.Fatalf("docs exemption must not depend on configuration")
	}
	if nilSet.Match("/api/contacts") {
		t.Fatalf("nil set must not exempt arbitrary paths")
	}
}

func TestNewExemptPathSetNormalizesPrefixes(t *testing.T) {
	set := NewExemptPathSet("  api/Public ", "", "/ok")
	if !set.Match("/api/public/catalog") {
		t.Fatalf("expected normalized prefix to match")
	}
	if got := len(set.Prefixes()); got != 2 {
		t.Fatalf("expected 2 prefixes, got %d", got)
	}
}
