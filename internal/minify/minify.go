// Package minify adapts the tdewolff minifiers for the pipeline.
//
// Only stylesheet and script kinds are minified; any other kind passes
// through byte-identical. Minification failures are never fatal: malformed
// input falls back to the original content with a warning, and the rest of
// the file's pipeline continues.
package minify

import (
	"bytes"
	"log/slog"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"

	"assetpress/internal/logging"
)

// mimeByKind maps asset kinds to the MIME types the minifier dispatches on.
var mimeByKind = map[string]string{
	"css": "text/css",
	"js":  "text/javascript",
}

// bangComment matches comments of the form /*! ... */ which carry license or
// conditional markers and must survive minification verbatim.
var bangComment = regexp.MustCompile(`(?s)/\*!.*?\*/`)

// Minifier minifies css/js content.
type Minifier struct {
	m                *minify.M
	preserveComments bool
	logger           *slog.Logger
}

// New builds a Minifier. When preserveComments is set, bang comments are
// hoisted verbatim to the top of the minified output.
func New(preserveComments bool, logger *slog.Logger) *Minifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/javascript", js.Minify)

	return &Minifier{
		m:                m,
		preserveComments: preserveComments,
		logger:           logging.Default(logger).With("component", "minify"),
	}
}

// Supported reports whether kind is a minifiable asset kind.
func Supported(kind string) bool {
	_, ok := mimeByKind[kind]
	return ok
}

// Minify returns the minified form of content for the given kind ("css" or
// "js"), or content unchanged when the kind is unsupported, the minifier
// fails, or minification did not shrink the content.
func (mi *Minifier) Minify(logicalPath string, content []byte, kind string) []byte {
	mime, ok := mimeByKind[kind]
	if !ok {
		return content
	}

	var preserved [][]byte
	if mi.preserveComments {
		preserved = bangComment.FindAll(content, -1)
	}

	minified, err := mi.m.Bytes(mime, content)
	if err != nil {
		mi.logger.Warn("minification failed, keeping original content",
			"path", logicalPath, "kind", kind, "error", err)
		return content
	}

	// The backends have their own bang-comment policy (the css minifier
	// re-emits them). Strip whatever they produced so the preserveComments
	// flag is the only policy in effect: off drops them, on re-attaches the
	// captured set exactly once.
	minified = bangComment.ReplaceAll(minified, nil)

	if len(preserved) > 0 {
		var out bytes.Buffer
		for _, c := range preserved {
			out.Write(c)
			out.WriteByte('\n')
		}
		out.Write(minified)
		minified = out.Bytes()
	}

	// Adopt the minified form only when it actually shrank the content;
	// otherwise rewriting the file buys nothing.
	if len(minified) >= len(content) {
		return content
	}
	return minified
}
