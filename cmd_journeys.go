package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"journeylens/api/config"
	"journeylens/api/journey"
	"journeylens/api/models"
	"journeylens/api/source"
)

var journeysOpts struct {
	baseURL string
	timeout time.Duration
	page    int
	search  string
	sort    string
	dark    bool
	seed    uint64
	detail  string
	visible int
}

var journeysCmd = &cobra.Command{
	Use:   "journeys",
	Short: "Fetch journeys and print one page of the dashboard",
	Long: `Fetches journeys from the journeys API, aggregates them and prints the
requested page. With --detail, prints the path of one journey instead,
--visible touchpoints at a time.

Example:
  journeylens journeys --base-url http://localhost:3001 --search google --page 2`,
	Args: cobra.NoArgs,
	RunE: runJourneys,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [channel...]",
	Short: "Print the category of one or more channel labels",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		styles := NewStyles(journeysOpts.dark)
		for _, channel := range args {
			category := journey.Classify(channel)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", styles.Badge(category).Render(channel), category)
		}
		return nil
	},
}

func init() {
	defaults := config.Default()
	f := journeysCmd.Flags()
	f.StringVar(&journeysOpts.baseURL, "base-url", defaults.Source.BaseURL, "journeys API base URL")
	f.DurationVar(&journeysOpts.timeout, "timeout", defaults.Source.GetTimeout(), "request timeout")
	f.IntVar(&journeysOpts.page, "page", 1, "page to print")
	f.StringVar(&journeysOpts.search, "search", "", "case-insensitive session id search")
	f.StringVar(&journeysOpts.sort, "sort", string(journey.SortDesc), "sort by creation date: asc or desc")
	f.Uint64Var(&journeysOpts.seed, "seed", 0, "seed for the placeholder revenue (0 picks one)")
	f.StringVar(&journeysOpts.detail, "detail", "", "print the path of this session instead of the page")
	f.IntVar(&journeysOpts.visible, "visible", 0, "touchpoints already shown for --detail")

	for _, cmd := range []*cobra.Command{journeysCmd, classifyCmd} {
		cmd.Flags().BoolVar(&journeysOpts.dark, "dark", false, "use the dark palette")
	}
}

func placeholderAttributor(seed uint64) journey.Attributor {
	if seed == 0 {
		return journey.NewRandomAttributor(nil)
	}
	return journey.NewRandomAttributor(rand.New(rand.NewPCG(seed, seed)))
}

func runJourneys(cmd *cobra.Command, args []string) error {
	if journeysOpts.page < 1 {
		return errors.New("--page must be at least 1")
	}

	src := source.NewHTTPSource(journeysOpts.baseURL, journeysOpts.timeout, logger)
	raw, err := src.FetchJourneys(cmd.Context())
	if err != nil {
		return err
	}
	set := journey.NewAggregator(placeholderAttributor(journeysOpts.seed)).Aggregate(raw)

	styles := NewStyles(journeysOpts.dark)
	out := cmd.OutOrStdout()

	if journeysOpts.detail != "" {
		j := findJourney(set, journeysOpts.detail)
		if j == nil {
			return fmt.Errorf("session %q not found", journeysOpts.detail)
		}
		var d journey.Disclosure
		d.Restore(j, journeysOpts.visible)
		fmt.Fprint(out, styles.RenderDisclosure(d.Snapshot()))
		return nil
	}

	window := journey.View(set, journey.Query{
		SearchTerm: journeysOpts.search,
		Sort:       journey.ParseSortOrder(journeysOpts.sort),
		Page:       journeysOpts.page,
		PageSize:   journey.DefaultPageSize,
	})
	fmt.Fprintln(out, styles.RenderSummary(journey.Summarize(set)))
	fmt.Fprint(out, styles.RenderWindow(window))
	return nil
}

func findJourney(set []models.JourneyAggregate, sessionID string) *models.JourneyAggregate {
	for i := range set {
		if set[i].SessionID == sessionID {
			return &set[i]
		}
	}
	return nil
}
