package entities

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My Board!!":          "my-board",
		"  Feature  Requests": "feature-requests",
		"v2.0 Roadmap":        "v2-0-roadmap",
		"---":                 "",
		"Café déjà":           "caf-d-j",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestPublicLinkAppendsSuffix(t *testing.T) {
	if got := PublicLink("My Board!!", "abc123"); got != "my-board-abc123" {
		t.Fatalf("unexpected link %q", got)
	}
	if got := PublicLink("!!!", "abc123"); got != "board-abc123" {
		t.Fatalf("symbol-only names must fall back, got %q", got)
	}
}

func TestRandomSuffixShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		suffix, err := RandomSuffix()
		if err != nil {
			t.Fatalf("suffix failed: %v", err)
		}
		if len(suffix) != 6 || strings.Trim(suffix, suffixAlphabet) != "" {
			t.Fatalf("unexpected suffix %q", suffix)
		}
		seen[suffix] = struct{}{}
	}
	if len(seen) < 45 {
		t.Fatalf("suffixes repeat too often: %d unique of 50", len(seen))
	}
}

func TestBoardVisibility(t *testing.T) {
	private := Board{OwnerID: "owner", IsPublic: false}
	if private.VisibleTo("") || private.VisibleTo("someone") || !private.VisibleTo("owner") {
		t.Fatal("private boards are visible to their owner only")
	}
	if !(Board{IsPublic: true}).VisibleTo("") {
		t.Fatal("public boards are visible to anonymous viewers")
	}
}
