package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetpress/internal/config"
	"assetpress/internal/manifest"
	manifestfile "assetpress/internal/manifest/file"
)

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "css/style.css", sampleCSS())
	writeFile(t, root, "js/app.js", []byte(strings.Repeat("function f(  ) { return 42; }\n", 20)))
	writeFile(t, root, "js/vendor.min.js", []byte(strings.Repeat("var v=1;", 50))) // pre-minified
	writeFile(t, root, "img/logo.png", []byte{0x89, 'P', 'N', 'G'})               // ineligible
	writeFile(t, root, "robots.txt", []byte(strings.Repeat("Disallow: /private\n", 30)))

	o, store := newOrchestrator(t, root, config.Default())
	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Processed != 3 {
		t.Errorf("processed = %d, want 3 (css, js, txt)", summary.Processed)
	}
	if summary.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (min.js, png)", summary.Skipped)
	}
	if summary.Rejected != 0 {
		t.Errorf("rejected = %d, want 0", summary.Rejected)
	}
	if summary.BytesOut == 0 {
		t.Error("BytesOut not accounted")
	}
	if summary.RunID == "" {
		t.Error("summary missing run ID")
	}

	m, _ := store.Load(context.Background())
	for _, logical := range []string{"css/style.css", "js/app.js", "robots.txt"} {
		if _, ok := m.Resolve(logical); !ok {
			t.Errorf("manifest entry missing for %s", logical)
		}
	}
	if _, ok := m.Resolve("js/vendor.min.js"); ok {
		t.Error("pre-minified file should not get a manifest entry")
	}
}

func TestRunIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "style.css", sampleCSS())

	o, store := newOrchestrator(t, root, config.Default())

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	m1, _ := store.Load(context.Background())
	first, _ := m1.Resolve("style.css")

	// Second run over the mutated tree: hashed outputs and compressed
	// siblings now exist alongside the minified original.
	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	m2, _ := store.Load(context.Background())
	second, _ := m2.Resolve("style.css")

	if first != second {
		t.Errorf("manifest entry changed across runs: %q vs %q", first, second)
	}
	// The walker must not feed prior outputs back in: only style.css itself
	// is a candidate again.
	if summary.Processed != 1 {
		t.Errorf("second run processed %d files, want 1", summary.Processed)
	}
}

func TestRunBudget(t *testing.T) {
	root := t.TempDir()
	content := []byte(strings.Repeat("p { padding: 1px; }\n", 30))
	for _, name := range []string{"a.css", "b.css", "c.css", "d.css"} {
		writeFile(t, root, name, content)
	}

	cfg := config.Default()
	cfg.MaxFilesPerRun = 2
	o, _ := newOrchestrator(t, root, cfg)

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Processed != 2 {
		t.Errorf("processed = %d, want exactly the budget of 2", summary.Processed)
	}
	if summary.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", summary.Skipped)
	}
}

func TestRunBudgetIgnoresPriorOutputs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.css", sampleCSS())
	writeFile(t, root, "b.css", []byte(strings.Repeat("p { padding: 1px; }\n", 30)))

	// First run mutates the tree: each source gains a hashed sibling and
	// compressed artifacts for both names.
	o, _ := newOrchestrator(t, root, config.Default())
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Second run with no budget headroom beyond the sources. Prior outputs
	// must not be admitted as candidates and burn the slots.
	cfg := config.Default()
	cfg.MaxFilesPerRun = 2
	tight, _ := newOrchestrator(t, root, cfg)

	summary, err := tight.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Processed != 2 {
		t.Errorf("processed = %d, want 2 (both sources within budget)", summary.Processed)
	}
	if summary.Skipped != 0 {
		t.Errorf("skipped = %d, want 0: prior outputs consumed budget slots", summary.Skipped)
	}
}

func TestRunDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "style.css", sampleCSS())

	cfg := config.Default()
	cfg.Enabled = false
	o, store := newOrchestrator(t, root, cfg)

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Processed != 0 {
		t.Errorf("disabled pipeline processed %d files", summary.Processed)
	}
	if m, _ := store.Load(context.Background()); m != nil {
		t.Error("disabled pipeline wrote a manifest")
	}
}

func TestRunWithFileStore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "style.css", sampleCSS())

	store := manifestfile.NewStore(filepath.Join(root, manifest.DefaultName))
	o, err := New(root, config.Default(), store, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, manifest.DefaultName)); err != nil {
		t.Fatalf("manifest file not written: %v", err)
	}

	// The manifest living inside the root must not be processed itself.
	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Processed != 1 {
		t.Errorf("second run processed %d files, want 1 (manifest excluded)", summary.Processed)
	}
	if _, err := os.Stat(filepath.Join(root, manifest.DefaultName+".gz")); !os.IsNotExist(err) {
		t.Error("manifest file was compressed")
	}
}

func TestRunCancelledBetweenFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "style.css", sampleCSS())

	o, _ := newOrchestrator(t, root, config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := o.Run(ctx)
	if err == nil {
		t.Fatal("Run with cancelled context should return the context error")
	}
	if summary.Processed != 0 {
		t.Errorf("cancelled run processed %d files", summary.Processed)
	}
}
