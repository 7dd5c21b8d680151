package render

import "testing"

func TestDefaultTransformFilename(t *testing.T) {
	cases := map[string]string{
		"Getting Started":  "getting_started",
		"HelloWorld Guide": "hello_world_guide",
		"readme":           "README",
		"ReadMe.md":        "README",
		"notes.MD":         "notes",
		"a--b??c":          "a_b_c",
		"already_snake":    "already_snake",
		"":                 "",
	}
	for input, want := range cases {
		if got := DefaultTransformFilename(input); got != want {
			t.Fatalf("DefaultTransformFilename(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugTransformFilenameKeepsReadme(t *testing.T) {
	if got := SlugTransformFilename("README.md"); got != "README" {
		t.Fatalf("expected README, got %q", got)
	}
	if got := SlugTransformFilename("Getting Started"); got == "" || got == "Getting Started" {
		t.Fatalf("expected a normalized stem, got %q", got)
	}
}

func TestNameRegistryClaim(t *testing.T) {
	registry := newNameRegistry()
	steps := []struct {
		name     string
		want     string
		collided bool
	}{
		{"doc", "doc", false},
		{"doc", "doc_2", true},
		{"doc_2", "doc_2_2", true},
		{"doc", "doc_3", true},
	}
	for _, step := range steps {
		got, collided := registry.claim(step.name)
		if got != step.want || collided != step.collided {
			t.Fatalf("claim(%q) = (%q, %v), want (%q, %v)", step.name, got, collided, step.want, step.collided)
		}
	}
}

func TestRelativeURL(t *testing.T) {
	cases := []struct{ from, to, want string }{
		{".", "main.md", "main.md"},
		{"guide", "guide/sub.md", "sub.md"},
		{"guide", "ref/sub.md", "../ref/sub.md"},
		{"a/b", "c.md", "../../c.md"},
	}
	for _, tc := range cases {
		if got := relativeURL(tc.from, tc.to); got != tc.want {
			t.Fatalf("relativeURL(%q, %q) = %q, want %q", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestHeadingDepthIsClamped(t *testing.T) {
	for level, want := range map[int]int{0: 1, 1: 1, 3: 3, 6: 6, 9: 6} {
		if got := headingDepth(level); got != want {
			t.Fatalf("headingDepth(%d) = %d, want %d", level, got, want)
		}
	}
}
