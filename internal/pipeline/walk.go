package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"

	"assetpress/internal/fingerprint"
	"assetpress/internal/manifest"
)

// listCandidates walks the static root and returns lazy candidates for every
// regular file. Files are collected up front so processing never walks a tree
// it is mutating. Outputs of a previous run — the manifest, compressed
// siblings, leftover temp files, and names already carrying a content
// digest — are left out so they never count against the run budget.
func listCandidates(root string) ([]Candidate, error) {
	var candidates []Candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		logical := filepath.ToSlash(rel)

		if filepath.Base(path) == manifest.DefaultName {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".gz", ".br", ".tmp":
			return nil
		}
		if fingerprint.CarriesDigest(logical) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		candidates = append(candidates, fileCandidate(logical, path, info.Size()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
