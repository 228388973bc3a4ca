package pathguard

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	root := t.TempDir()

	t.Run("accepts descendants", func(t *testing.T) {
		good := []string{
			"style.css",
			"css/style.css",
			"deep/nested/dir/app.js",
			"./css/style.css",
			"css/../js/app.js", // normalizes to js/app.js, still inside
		}
		for _, p := range good {
			resolved, err := Validate(root, p)
			if err != nil {
				t.Errorf("Validate(%q) = %v, want ok", p, err)
				continue
			}
			if !filepath.IsAbs(resolved) {
				t.Errorf("Validate(%q) returned relative path %q", p, resolved)
			}
		}
	})

	t.Run("rejects escapes", func(t *testing.T) {
		bad := []string{
			"",
			"..",
			"../outside.css",
			"css/../../outside.css",
			"a/b/../../../etc/passwd",
			"/etc/passwd",
			"/absolute/override.css",
		}
		for _, p := range bad {
			if _, err := Validate(root, p); !errors.Is(err, ErrPathTraversal) {
				t.Errorf("Validate(%q) = %v, want ErrPathTraversal", p, err)
			}
		}
	})

	t.Run("never touches the filesystem for rejected paths", func(t *testing.T) {
		// Nonexistent root is fine: validation is lexical only.
		if _, err := Validate(filepath.Join(root, "missing"), "../x"); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("got %v, want ErrPathTraversal", err)
		}
		if _, err := Validate(filepath.Join(root, "missing"), "ok.css"); err != nil {
			t.Errorf("lexical validation should not require the root to exist: %v", err)
		}
	})
}
