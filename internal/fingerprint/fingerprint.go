// Package fingerprint computes stable content digests and builds
// digest-carrying filenames for manifest resolution.
//
// The digest is SHA-256 truncated to 12 hex characters. It exists for
// cache-key stability and change detection between runs, not as a security
// boundary; truncation is acceptable because a collision costs a stale cache
// entry, nothing more.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"regexp"
	"strings"
)

// DigestLength is the number of hex characters kept from the full hash.
const DigestLength = 12

// staleDigest matches a previously inserted digest at the end of a file stem,
// so re-fingerprinting replaces the old digest instead of stacking a new one.
var staleDigest = regexp.MustCompile(`\.[a-f0-9]{12}$`)

// Digest returns the truncated SHA-256 hex digest of content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:DigestLength]
}

// CarriesDigest reports whether the name already ends in a digest inserted by
// HashedName. Such names are prior run outputs and are skipped during
// collection rather than reprocessed. For an extensionless source like
// "LICENSE" the digest is the final dot-segment, so both the stem and the
// extension position are checked.
func CarriesDigest(logicalPath string) bool {
	base := path.Base(logicalPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return staleDigest.MatchString(stem) || staleDigest.MatchString(ext)
}

// HashedName inserts digest before the extension of the slash-separated
// logical path: "css/style.css" becomes "css/style.<digest>.css". A stale
// digest already present in the stem is replaced.
func HashedName(logicalPath, digest string) string {
	dir, base := path.Split(logicalPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = staleDigest.ReplaceAllString(stem, "")
	return dir + stem + "." + digest + ext
}
