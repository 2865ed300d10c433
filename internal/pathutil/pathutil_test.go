package pathutil

import "testing"

func TestExpand(t *testing.T) {
	t.Setenv("HOME", "/home/test")

	cases := map[string]string{
		"~/file":         "/home/test/file",
		"$HOME/file":     "/home/test/file",
		"${HOME}/file":   "/home/test/file",
		"/home/~/file":   "/home/~/file",
		"relative/file":  "relative/file",
		"~":              "/home/test",
		"~notHome/file":  "~notHome/file",
		"$HOMEPAGE/file": "$HOMEPAGE/file",
	}

	for in, want := range cases {
		if got := Expand(in); got != want {
			t.Errorf("Expand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollapse(t *testing.T) {
	t.Setenv("HOME", "/home/test")

	cases := map[string]string{
		"/home/test":            "~",
		"/home/test/work/repo":  "~/work/repo",
		"/home/testing/repo":    "/home/testing/repo",
		"relative/path":         "relative/path",
		"/var/lib/git-repo/one": "/var/lib/git-repo/one",
	}

	for in, want := range cases {
		if got := Collapse(in); got != want {
			t.Errorf("Collapse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandCollapseRoundTrip(t *testing.T) {
	t.Setenv("HOME", "/home/test")

	for _, p := range []string{"~", "~/work/repo"} {
		if got := Collapse(Expand(p)); got != p {
			t.Errorf("Collapse(Expand(%q)) = %q, want %q", p, got, p)
		}
	}
}

func TestValidUTF8(t *testing.T) {
	if !ValidUTF8("feature/foo") {
		t.Error("expected valid utf8 branch name to pass")
	}
	if ValidUTF8(string([]byte{0xff, 0xfe})) {
		t.Error("expected invalid utf8 byte sequence to fail")
	}
}
