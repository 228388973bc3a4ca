package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"assetpress/internal/config"
	"assetpress/internal/manifest"
	manifestfile "assetpress/internal/manifest/file"
	"assetpress/internal/pipeline"
	"assetpress/internal/watch"
)

// addConfigFlags registers the configuration surface shared by run and watch.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to a JSON config file")
	cmd.Flags().String("preset", "balanced", "compression preset: balanced or max")
	cmd.Flags().String("manifest", "", "manifest path (default <root>/"+manifest.DefaultName+")")
	cmd.Flags().Bool("minify", true, "minify css/js files")
	cmd.Flags().Bool("gzip", true, "write gzip artifacts")
	cmd.Flags().Bool("brotli", true, "write brotli artifacts")
	cmd.Flags().Int("gzip-level", 0, "gzip level 0-9 (overrides preset)")
	cmd.Flags().Int("brotli-quality", 0, "brotli quality 0-11 (overrides preset)")
	cmd.Flags().Int64("min-size", 0, "minimum file size in bytes for compression")
	cmd.Flags().Int64("max-size", 0, "maximum file size in bytes to process")
	cmd.Flags().Int("max-files", 0, "maximum files processed per run")
	cmd.Flags().Int("workers", 0, "concurrent workers (0 = one per CPU)")
	cmd.Flags().StringArray("exclude", nil, "additional exclusion glob (repeatable)")
}

// configFromCmd resolves the effective configuration: config file or preset
// as the base, explicitly set flags layered on top.
func configFromCmd(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else {
		switch preset, _ := cmd.Flags().GetString("preset"); preset {
		case "balanced":
			cfg = config.Default()
		case "max":
			cfg = config.MaxCompression()
		default:
			return config.Config{}, fmt.Errorf("unknown preset %q (want balanced or max)", preset)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("minify") {
		cfg.MinifyFiles, _ = flags.GetBool("minify")
	}
	if flags.Changed("gzip") {
		cfg.GzipCompression, _ = flags.GetBool("gzip")
	}
	if flags.Changed("brotli") {
		cfg.BrotliCompression, _ = flags.GetBool("brotli")
	}
	if flags.Changed("gzip-level") {
		cfg.GzipLevel, _ = flags.GetInt("gzip-level")
	}
	if flags.Changed("brotli-quality") {
		cfg.BrotliQuality, _ = flags.GetInt("brotli-quality")
	}
	if flags.Changed("min-size") {
		cfg.MinFileSize, _ = flags.GetInt64("min-size")
	}
	if flags.Changed("max-size") {
		cfg.MaxFileSize, _ = flags.GetInt64("max-size")
	}
	if flags.Changed("max-files") {
		cfg.MaxFilesPerRun, _ = flags.GetInt("max-files")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if excludes, _ := flags.GetStringArray("exclude"); len(excludes) > 0 {
		cfg.ExcludePatterns = append(cfg.ExcludePatterns, excludes...)
	}

	return cfg, cfg.Validate()
}

// orchestratorFromCmd wires the pipeline for the given static root.
func orchestratorFromCmd(cmd *cobra.Command, root string) (*pipeline.Orchestrator, error) {
	cfg, err := configFromCmd(cmd)
	if err != nil {
		return nil, err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		manifestPath = filepath.Join(root, manifest.DefaultName)
	}
	store := manifestfile.NewStore(manifestPath)

	return pipeline.New(root, cfg, store, loggerFromCmd(cmd))
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <static-root>",
		Short: "Process a static asset tree once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestratorFromCmd(cmd, args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := o.Run(ctx)
			if err != nil {
				return err
			}
			if summary.Rejected > 0 {
				return fmt.Errorf("%d file(s) rejected", summary.Rejected)
			}
			return nil
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <static-root>",
		Short: "Process a static asset tree and re-process on changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			o, err := orchestratorFromCmd(cmd, root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Initial pass before watching.
			if _, err := o.Run(ctx); err != nil {
				return err
			}

			debounce, _ := cmd.Flags().GetDuration("debounce")
			w := watch.New(root, debounce, func(ctx context.Context) error {
				_, err := o.Run(ctx)
				return err
			}, loggerFromCmd(cmd))

			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before re-processing")
	return cmd
}
