package fingerprint

import (
	"strings"
	"testing"
)

func TestDigest(t *testing.T) {
	t.Run("stable", func(t *testing.T) {
		a := Digest([]byte("body { color: red }"))
		b := Digest([]byte("body { color: red }"))
		if a != b {
			t.Errorf("same content produced different digests: %q vs %q", a, b)
		}
	})

	t.Run("length and alphabet", func(t *testing.T) {
		d := Digest([]byte("content"))
		if len(d) != DigestLength {
			t.Fatalf("digest length = %d, want %d", len(d), DigestLength)
		}
		if strings.Trim(d, "0123456789abcdef") != "" {
			t.Errorf("digest %q contains non-hex characters", d)
		}
	})

	t.Run("content sensitive", func(t *testing.T) {
		if Digest([]byte("a")) == Digest([]byte("b")) {
			t.Error("different content produced identical digests")
		}
	})

	t.Run("empty content", func(t *testing.T) {
		if len(Digest(nil)) != DigestLength {
			t.Error("empty content should still produce a digest")
		}
	})
}

func TestHashedName(t *testing.T) {
	tests := []struct {
		name    string
		logical string
		digest  string
		want    string
	}{
		{"bare file", "style.css", "abc123def456", "style.abc123def456.css"},
		{"nested path", "css/vendor/style.css", "abc123def456", "css/vendor/style.abc123def456.css"},
		{"replaces stale digest", "style.0123456789ab.css", "abc123def456", "style.abc123def456.css"},
		{"no extension", "LICENSE", "abc123def456", "LICENSE.abc123def456"},
		{"dotted stem kept", "jquery.plugin.js", "abc123def456", "jquery.plugin.abc123def456.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HashedName(tt.logical, tt.digest)
			if got != tt.want {
				t.Errorf("HashedName(%q, %q) = %q, want %q", tt.logical, tt.digest, got, tt.want)
			}
		})
	}

	t.Run("hashed names are detectable", func(t *testing.T) {
		d := Digest([]byte("x"))
		for _, logical := range []string{"css/style.css", "LICENSE", "js/app.min.js"} {
			if !CarriesDigest(HashedName(logical, d)) {
				t.Errorf("HashedName(%q) output not detected by CarriesDigest", logical)
			}
		}
		for _, p := range []string{"css/style.css", "LICENSE", "app.min.js", "style.v2.css"} {
			if CarriesDigest(p) {
				t.Errorf("CarriesDigest(%q) = true, want false", p)
			}
		}
	})

	t.Run("idempotent across reprocessing", func(t *testing.T) {
		d := Digest([]byte("same bytes"))
		first := HashedName("js/app.js", d)
		second := HashedName(first, d)
		if first != second {
			t.Errorf("rehashing unchanged content changed the name: %q -> %q", first, second)
		}
	})
}
