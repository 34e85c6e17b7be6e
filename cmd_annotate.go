package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fragmede/threadprep/internal/label"
)

var annotateLimit int

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Label stored comments as Informative or Not Informative",
	Long: `Classify every stored comment that has no label yet with a Gemini
model. The API key is read from GEMINI_API_KEY (a .env file in the
working directory is loaded first). Comments the model fails on stay
unlabeled and are retried on the next run.`,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().IntVar(&annotateLimit, "limit", 0, "label at most this many comments (0 = all)")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := db.UnlabeledComments(annotateLimit)
	if err != nil {
		return fmt.Errorf("loading unlabeled comments: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to label")
		return nil
	}

	clf, err := label.NewGenAIClassifier(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return err
	}

	a := &label.Annotator{Classifier: clf, Workers: cfg.AnnotateWorkers, Log: logger}
	res, err := a.Annotate(ctx, recs, db.PutLabel)
	logger.Info("annotation finished",
		zap.String("model", clf.Model()),
		zap.Int("labeled", res.Labeled),
		zap.Int("failed", res.Failed))
	if err != nil {
		return err
	}

	total, labeled, err := db.CountComments()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Labeled %d comments (%d failed); %d of %d stored comments have labels\n",
		res.Labeled, res.Failed, labeled, total)
	return nil
}
