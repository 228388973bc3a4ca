// Package compress produces compressed sibling artifacts for processed
// content.
//
// Codecs live in a capability table resolved once at construction time:
// later stages only check presence instead of probing backends per file. A
// requested codec missing from the table degrades to disabled for the run;
// the remaining codecs still operate.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"assetpress/internal/logging"
)

// ErrCodecUnavailable marks a requested codec with no backend in the table.
var ErrCodecUnavailable = errors.New("codec unavailable")

// Codec tags and their conventional artifact suffixes.
const (
	TagGzip   = "gzip"
	TagBrotli = "brotli"

	SuffixGzip   = ".gz"
	SuffixBrotli = ".br"
)

// Artifact is one compressed rendition of a file's content.
type Artifact struct {
	Codec   string
	Suffix  string
	Content []byte
}

// Codec encodes bytes at the level fixed at construction time.
type Codec interface {
	Tag() string
	Suffix() string
	Encode(content []byte) ([]byte, error)
}

// builders is the codec capability table. Resolution happens once in New;
// the per-file path never consults it.
var builders = map[string]func(level int) Codec{
	TagGzip:   func(level int) Codec { return gzipCodec{level: level} },
	TagBrotli: func(level int) Codec { return brotliCodec{quality: level} },
}

// Request names a codec and the level to run it at. Levels are assumed
// validated by config; the builders do not clamp.
type Request struct {
	Tag   string
	Level int
}

// Compressor runs the enabled codecs over content above the size floor.
type Compressor struct {
	codecs  []Codec
	minSize int64
	logger  *slog.Logger
}

// New resolves the requested codecs against the capability table. Unknown
// tags are logged and dropped (ErrCodecUnavailable semantics): the run
// continues with whatever codecs resolved.
func New(requests []Request, minSize int64, logger *slog.Logger) *Compressor {
	logger = logging.Default(logger).With("component", "compress")

	var codecs []Codec
	for _, req := range requests {
		build, ok := builders[req.Tag]
		if !ok {
			logger.Warn("disabling unavailable codec for this run",
				"codec", req.Tag, "error", ErrCodecUnavailable)
			continue
		}
		codecs = append(codecs, build(req.Level))
	}

	return &Compressor{codecs: codecs, minSize: minSize, logger: logger}
}

// Enabled reports whether any codec resolved.
func (c *Compressor) Enabled() bool { return len(c.codecs) > 0 }

// Compress returns one artifact per resolved codec. Content below the size
// floor yields no artifacts; that is a normal outcome, not an error.
// Individual codec failures drop that codec's artifact with a warning.
func (c *Compressor) Compress(logicalPath string, content []byte) []Artifact {
	if int64(len(content)) < c.minSize || len(c.codecs) == 0 {
		return nil
	}

	artifacts := make([]Artifact, 0, len(c.codecs))
	for _, codec := range c.codecs {
		out, err := codec.Encode(content)
		if err != nil {
			c.logger.Warn("codec failed, skipping artifact",
				"path", logicalPath, "codec", codec.Tag(), "error", err)
			continue
		}
		artifacts = append(artifacts, Artifact{
			Codec:   codec.Tag(),
			Suffix:  codec.Suffix(),
			Content: out,
		})
	}
	return artifacts
}

type gzipCodec struct {
	level int
}

func (gzipCodec) Tag() string    { return TagGzip }
func (gzipCodec) Suffix() string { return SuffixGzip }

func (g gzipCodec) Encode(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

type brotliCodec struct {
	quality int
}

func (brotliCodec) Tag() string    { return TagBrotli }
func (brotliCodec) Suffix() string { return SuffixBrotli }

func (b brotliCodec) Encode(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, b.quality)
	if _, err := w.Write(content); err != nil {
		return nil, fmt.Errorf("brotli write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli close: %w", err)
	}
	return buf.Bytes(), nil
}
