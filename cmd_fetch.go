package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fragmede/threadprep/internal/api"
	"github.com/fragmede/threadprep/internal/cache"
)

var (
	fetchTopic string
	fetchStory int
	fetchList  string
	fetchLimit int
	fetchForce bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download comment threads into the local cache",
	Long: `Fetch stories and every comment under them.

Stories come from one of:
  --topic T   recent stories matching a search
  --story ID  a single story
  --list L    a front page list (top, new, best, ask, show)

Stories fetched within the configured TTL are skipped unless --force.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchTopic, "topic", "", "search stories about a topic")
	fetchCmd.Flags().IntVar(&fetchStory, "story", 0, "fetch a single story by id")
	fetchCmd.Flags().StringVar(&fetchList, "list", "", "fetch a front page list")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "maximum stories (default from config)")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "refetch stories that are still fresh")
	fetchCmd.MarkFlagsMutuallyExclusive("topic", "story", "list")
	fetchCmd.MarkFlagsOneRequired("topic", "story", "list")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit := fetchLimit
	if limit <= 0 {
		limit = cfg.StoryLimit
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	client := api.NewClient(api.WithConcurrency(cfg.FetchWorkers), api.WithLogger(logger))
	defer client.Close()

	var stories []*api.Item
	switch {
	case fetchStory != 0:
		story, err := client.GetItem(ctx, fetchStory)
		if err != nil {
			return err
		}
		if story == nil {
			return fmt.Errorf("story %d not found", fetchStory)
		}
		stories = []*api.Item{story}
	case fetchTopic != "":
		stories, err = client.SearchStories(ctx, fetchTopic, limit)
	default:
		st, perr := api.ParseStoryType(fetchList)
		if perr != nil {
			return perr
		}
		stories, err = client.GetStories(ctx, st, limit)
	}
	if err != nil {
		return err
	}
	logger.Info("stories selected", zap.Int("count", len(stories)), zap.String("topic", fetchTopic))

	var fetched, comments int
	for _, story := range stories {
		n, err := fetchStoryThread(cmd, client, db, story)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Warn("story failed", zap.Int("story", story.ID), zap.Error(err))
			continue
		}
		if n >= 0 {
			fetched++
			comments += n
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d of %d stories, %d comments\n", fetched, len(stories), comments)
	return nil
}

// fetchStoryThread returns the number of comments stored, or -1 when the
// story was fresh and skipped.
func fetchStoryThread(cmd *cobra.Command, client *api.Client, db *cache.DB, story *api.Item) (int, error) {
	if !fetchForce {
		fresh, err := db.StoryFresh(story.ID, cfg.StoryTTL)
		if err != nil {
			return 0, err
		}
		if fresh {
			logger.Debug("story fresh, skipping", zap.Int("story", story.ID))
			return -1, nil
		}
	}

	thread, err := client.FetchThread(cmd.Context(), story.ID)
	if err != nil {
		return 0, err
	}
	recs, err := thread.Records()
	if err != nil {
		return 0, err
	}
	if err := db.PutComments(strconv.Itoa(story.ID), recs); err != nil {
		return 0, err
	}
	if err := db.PutStory(thread.Story, fetchTopic, len(recs)); err != nil {
		return 0, err
	}
	logger.Info("thread stored",
		zap.Int("story", story.ID),
		zap.String("title", thread.Story.Title),
		zap.Int("comments", len(recs)))
	return len(recs), nil
}
