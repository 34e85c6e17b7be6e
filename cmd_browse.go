package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/ui"
)

const browseRuns = 20

var browseRun string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Explore stored runs in a terminal UI",
	Long: `Browse the threads of stored runs. The newest run is shown first;
tab and shift+tab switch between recent runs. Logs go to the configured
log file while the UI is open.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseRun, "run", "", "open this run first")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs(browseRuns)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if browseRun != "" {
		runs, err = moveToFront(runs, browseRun)
		if err != nil {
			return err
		}
	}

	app := ui.NewApp(runs, db, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func moveToFront(runs []cache.Run, id string) ([]cache.Run, error) {
	for i, r := range runs {
		if r.ID == id {
			out := append([]cache.Run{r}, runs[:i]...)
			return append(out, runs[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("run %s not found among the %d most recent", id, len(runs))
}
