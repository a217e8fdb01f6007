package commands

import (
	"log/slog"
	"time"

	"campusassist-backend/lib/serviceutil"
	"campusassist-backend/services/campus"

	"github.com/spf13/cobra"
)

var scrapeCampus *string
var scrapeCount *int
var scrapeForce *bool
var scrapeNoCache *bool

func init() {
	scrapeCampus = scrapeCmd.Flags().String("campus", "", "The campus to scope the query to.")
	scrapeCount = scrapeCmd.Flags().Int("count", 0, "Maximum records to return, 0 means unlimited.")
	scrapeForce = scrapeCmd.Flags().Bool("force", false, "Scrape even when a live cache entry exists.")
	scrapeNoCache = scrapeCmd.Flags().Bool("no-cache", false, "Bypass the result cache entirely.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <category>",
	Short: "Scrapes one category (course, assignment, notice, academic, scholarship, career, library, studyroom, facilities) and prints the records.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		backend := buildBackend(ctx)
		defer backend.close(ctx)

		t1 := time.Now()
		result, err := backend.service.ScrapeByCategory(ctx, campus.Category(args[0]), campus.Options{
			Campus:       *scrapeCampus,
			Count:        *scrapeCount,
			ForceRefresh: *scrapeForce,
			SkipCache:    *scrapeNoCache,
		})
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
		slog.Info("scraping time", "seconds", time.Since(t1).Seconds(), "cached", result.FromCache)

		renderResult(result)
	},
}
