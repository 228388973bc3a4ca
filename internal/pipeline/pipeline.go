// Package pipeline drives collected static files through eligibility checks,
// minification, dual compression, fingerprinting, and manifest bookkeeping.
//
// The orchestrator processes one file at a time; Run fans out over a walked
// tree. Per-file failures never abort a run: the host gets an aggregate
// summary and decides its own failure policy.
package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"assetpress/internal/budget"
	"assetpress/internal/compress"
	"assetpress/internal/config"
	"assetpress/internal/eligibility"
	"assetpress/internal/fingerprint"
	"assetpress/internal/logging"
	"assetpress/internal/manifest"
	"assetpress/internal/minify"
	"assetpress/internal/pathguard"
)

// Outcome tags the result of one orchestrator invocation.
type Outcome int

const (
	// OutcomeProcessed means the file was transformed and its outputs written.
	OutcomeProcessed Outcome = iota
	// OutcomeSkipped means the file was intentionally left untouched
	// (ineligible, over budget, or the pipeline is disabled).
	OutcomeSkipped
	// OutcomeRejected means the file hit an error (unsafe path, read or
	// write failure). Fatal for the file, never for the run.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Candidate is one input file surfaced by the collector. Content is loaded
// lazily: ineligible files never have their bytes read beyond the size probe.
type Candidate struct {
	// LogicalPath is slash-separated and relative to the static root.
	LogicalPath string
	// Size is the byte length, known from the collector's metadata probe.
	Size int64

	load func() ([]byte, error)
}

// NewCandidate builds a candidate from in-memory content, for hosts that
// already hold the bytes (and for tests).
func NewCandidate(logicalPath string, content []byte) Candidate {
	return Candidate{
		LogicalPath: logicalPath,
		Size:        int64(len(content)),
		load:        func() ([]byte, error) { return content, nil },
	}
}

// fileCandidate builds a candidate whose content is read from absPath on
// first use.
func fileCandidate(logicalPath, absPath string, size int64) Candidate {
	return Candidate{
		LogicalPath: logicalPath,
		Size:        size,
		load:        func() ([]byte, error) { return os.ReadFile(absPath) },
	}
}

// Result is the outcome of processing one candidate.
type Result struct {
	LogicalPath string
	Outcome     Outcome
	// Reason explains skips and rejections ("ineligible", "file too large",
	// "run budget exhausted", "path traversal", ...).
	Reason string
	// Err carries the underlying error for rejections.
	Err error

	// Fingerprint is the content digest of the final bytes.
	Fingerprint string
	// FinalName is the fingerprint-carrying name the manifest maps to.
	FinalName string
	// Written lists every path written for this file, relative to the root.
	Written []string
	// BytesOut is the total size of all written outputs.
	BytesOut int64
}

// Orchestrator runs candidates through the processing sequence.
type Orchestrator struct {
	root       string
	cfg        config.Config
	rules      eligibility.Rules
	limits     budget.Limits
	minifier   *minify.Minifier
	compressor *compress.Compressor
	store      manifest.Store
	logger     *slog.Logger
}

// New validates cfg and wires the pipeline components. Configuration errors
// abort here, before any file is touched.
func New(root string, cfg config.Config, store manifest.Store, logger *slog.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logging.Default(logger)

	var requests []compress.Request
	if cfg.GzipCompression {
		requests = append(requests, compress.Request{Tag: compress.TagGzip, Level: cfg.GzipLevel})
	}
	if cfg.BrotliCompression {
		requests = append(requests, compress.Request{Tag: compress.TagBrotli, Level: cfg.BrotliQuality})
	}

	return &Orchestrator{
		root: root,
		cfg:  cfg,
		rules: eligibility.Rules{
			Extensions:      cfg.SupportedExtensions,
			ExcludePatterns: cfg.ExcludePatterns,
		},
		limits: budget.Limits{
			MaxFileSize:    cfg.MaxFileSize,
			MaxFilesPerRun: cfg.MaxFilesPerRun,
		},
		minifier:   minify.New(cfg.PreserveComments, logger),
		compressor: compress.New(requests, cfg.MinFileSize, logger),
		store:      store,
		logger:     logger.With("component", "pipeline"),
	}, nil
}

// Process runs one candidate through the sequence: path guard, budget
// admission, eligibility, minification, fingerprinting, compression, output
// writes. Short circuits produce skip or rejection results; only writes can
// reject after admission.
func (o *Orchestrator) Process(candidate Candidate, state *budget.RunState) Result {
	res := Result{LogicalPath: candidate.LogicalPath}

	if !o.cfg.Enabled {
		res.Outcome = OutcomeSkipped
		res.Reason = "pipeline disabled"
		return res
	}

	absPath, err := pathguard.Validate(o.root, candidate.LogicalPath)
	if err != nil {
		res.Outcome = OutcomeRejected
		res.Reason = "path traversal"
		res.Err = err
		return res
	}

	if err := state.Admit(o.limits, candidate.Size); err != nil {
		res.Outcome = OutcomeSkipped
		res.Reason = err.Error()
		return res
	}

	class := eligibility.Classify(candidate.LogicalPath, o.rules)
	if class == eligibility.ClassSkip {
		res.Outcome = OutcomeSkipped
		res.Reason = "ineligible"
		return res
	}

	content, err := candidate.load()
	if err != nil {
		res.Outcome = OutcomeRejected
		res.Reason = "read failed"
		res.Err = fmt.Errorf("read %s: %w", candidate.LogicalPath, err)
		return res
	}

	if class.Minify() && o.cfg.MinifyFiles {
		kind := eligibility.Extension(candidate.LogicalPath)
		content = o.minifier.Minify(candidate.LogicalPath, content, kind)
	}

	res.Fingerprint = fingerprint.Digest(content)
	res.FinalName = fingerprint.HashedName(candidate.LogicalPath, res.Fingerprint)

	var artifacts []compress.Artifact
	if class.Compress() {
		artifacts = o.compressor.Compress(candidate.LogicalPath, content)
	}

	if err := o.writeOutputs(absPath, &res, content, artifacts); err != nil {
		res.Outcome = OutcomeRejected
		res.Reason = "write failed"
		res.Err = err
		return res
	}

	res.Outcome = OutcomeProcessed
	return res
}

// writeOutputs persists the primary content in place, a fingerprint-named
// copy for manifest resolution, and the compressed artifacts for both names.
func (o *Orchestrator) writeOutputs(absPath string, res *Result, content []byte, artifacts []compress.Artifact) error {
	hashedAbs, err := pathguard.Validate(o.root, res.FinalName)
	if err != nil {
		return err
	}

	type output struct {
		abs     string
		logical string
		data    []byte
	}
	writes := []output{
		{absPath, res.LogicalPath, content},
		{hashedAbs, res.FinalName, content},
	}
	for _, a := range artifacts {
		writes = append(writes,
			output{absPath + a.Suffix, res.LogicalPath + a.Suffix, a.Content},
			output{hashedAbs + a.Suffix, res.FinalName + a.Suffix, a.Content},
		)
	}

	for _, w := range writes {
		// Unchanged outputs are left alone. Rewriting identical bytes would
		// churn mtimes and retrigger watch mode on its own output.
		if existing, err := os.ReadFile(w.abs); err == nil && bytes.Equal(existing, w.data) {
			continue
		}
		if err := os.WriteFile(w.abs, w.data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", w.logical, err)
		}
		res.Written = append(res.Written, w.logical)
		res.BytesOut += int64(len(w.data))
	}
	return nil
}
