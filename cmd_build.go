package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/comment"
	"github.com/fragmede/threadprep/internal/export"
	"github.com/fragmede/threadprep/internal/media"
	"github.com/fragmede/threadprep/internal/pipeline"
)

var (
	buildInput       string
	buildLabeledOnly bool
	buildNoImages    bool
	buildOut         string
	buildMaxDepth    int
	buildContext     int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the flat dataset from stored or file comments",
	Long: `Assemble comments into trees, cut them at the maximum depth, resolve
and inherit images, then write one row per comment with its nearest
ancestors as context.

Records come from the cache, or from a JSON array given with --input.
Output goes to the export directory:
  dataset.parquet  one row per comment
  dataset.jsonl    the same rows as JSON Lines
  trees.json       the pruned trees with resolved images
The rows are also stored as a run for "threadprep browse".`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildInput, "input", "", "read records from a JSON file instead of the cache")
	buildCmd.Flags().BoolVar(&buildLabeledOnly, "labeled-only", false, "leave out comments without a label")
	buildCmd.Flags().BoolVar(&buildNoImages, "no-images", false, "do not download images")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "export directory (default from config)")
	buildCmd.Flags().IntVar(&buildMaxDepth, "max-depth", 0, "deepest level kept (default from config)")
	buildCmd.Flags().IntVar(&buildContext, "context", 0, "ancestor bodies per row (default from config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = buildMaxDepth
	}
	if cmd.Flags().Changed("context") {
		cfg.ContextWindow = buildContext
	}
	if buildOut != "" {
		cfg.ExportDir = buildOut
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	source := "cache"
	var recs []comment.Record
	if buildInput != "" {
		source = buildInput
		recs, err = comment.ReadFile(buildInput)
		if err == nil && buildLabeledOnly {
			recs = labeledOnly(recs)
		}
	} else {
		recs, err = db.LoadComments(buildLabeledOnly)
	}
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}

	opts := pipeline.Options{
		MaxDepth:      cfg.MaxDepth,
		ContextWindow: cfg.ContextWindow,
		ImageDir:      cfg.ImageDir,
		ImageWorkers:  cfg.ImageWorkers,
		Log:           logger,
	}
	if !buildNoImages {
		res := media.NewHTTPResolver(cfg.ImageTimeout, cfg.ImageMaxDim, logger)
		defer res.Close()
		opts.Resolver = res
	}

	out, err := pipeline.Run(ctx, recs, opts)
	if err != nil {
		return err
	}

	paths, err := export.WriteAll(cfg.ExportDir, out.Forest, out.Rows)
	if err != nil {
		return err
	}

	run := cache.Run{
		ID:      uuid.NewString(),
		Source:  source,
		Records: out.Build.Records,
		Skipped: out.Build.Skipped,
		Roots:   out.Build.Roots,
		Pruned:  out.Pruned,
	}
	if err := db.PutRun(run, out.Rows); err != nil {
		return fmt.Errorf("storing run: %w", err)
	}
	logger.Info("run stored", zap.String("run", run.ID), zap.String("dir", cfg.ExportDir))

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s: %d rows from %d records in %d threads (%d pruned, %d skipped)\n",
		run.ID, len(out.Rows), out.Build.Records, out.Build.Roots, out.Pruned, out.Build.Skipped)
	fmt.Fprintf(w, "Images: %d resolved, %d failed, %d inherited\n",
		out.Media.Resolved, out.Media.Failed, out.Media.Inherited)
	fmt.Fprintf(w, "Wrote %s\n      %s\n      %s\n", paths.Parquet, paths.JSONL, paths.Trees)
	return nil
}

func labeledOnly(recs []comment.Record) []comment.Record {
	kept := recs[:0:0]
	for _, r := range recs {
		if r.Label != "" {
			kept = append(kept, r)
		}
	}
	return kept
}
