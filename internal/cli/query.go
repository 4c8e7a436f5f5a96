package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docvec/docvec/internal/config"
	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/service"
)

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	var (
		collection  string
		topK        int
		contentType string
		tablesOnly  bool
		source      string
		pageMin     int
		pageMax     int
		full        bool
		stats       bool
	)

	cmd := &cobra.Command{
		Use:   "query <text> [<text>...]",
		Short: "Search a collection by semantic similarity",
		Long: `Search the configured collection. Multiple query texts run as
independent searches, each returning its own ranked list.

Examples:
  docvec query "net revenue growth"
  docvec query "liquidity risk" -n 10 --content-type text
  docvec query "quarterly figures" --tables-only --page-min 10 --page-max 40
  docvec query "segment results" --source 10q_3q25.pdf --full
  docvec query --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if collection == "" {
				collection = cfg.Collection
			}

			if stats {
				return runStats(cmd.Context(), cfg, collection)
			}
			if len(args) == 0 {
				return domain.ErrEmptyQuery
			}

			if topK == 0 {
				topK = cfg.DefaultResults
			}
			if topK > cfg.MaxResults {
				topK = cfg.MaxResults
			}

			intent := service.QueryIntent{
				ContentType: contentType,
				TablesOnly:  tablesOnly,
				Source:      source,
				TopK:        topK,
				FullContent: full,
			}
			if cmd.Flags().Changed("page-min") {
				intent.PageMin = &pageMin
			}
			if cmd.Flags().Changed("page-max") {
				intent.PageMax = &pageMax
			}
			return runQuery(cmd.Context(), cfg, collection, args, intent)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "Collection to search (default from DOCVEC_COLLECTION)")
	cmd.Flags().IntVarP(&topK, "num-results", "n", 0, "Number of results (default from DOCVEC_DEFAULT_RESULTS)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Only match chunks with this content type")
	cmd.Flags().BoolVar(&tablesOnly, "tables-only", false, "Only match table chunks")
	cmd.Flags().StringVar(&source, "source", "", "Only match chunks from this source file")
	cmd.Flags().IntVar(&pageMin, "page-min", 0, "Lowest page to match")
	cmd.Flags().IntVar(&pageMax, "page-max", 0, "Highest page to match")
	cmd.Flags().BoolVar(&full, "full", false, "Print full chunk text instead of a preview")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print collection statistics instead of searching")

	return cmd
}

func runQuery(ctx context.Context, cfg *config.Config, collection string, texts []string, base service.QueryIntent) error {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := NewQueryService(cfg, st)
	if err != nil {
		return err
	}

	intents := make([]service.QueryIntent, len(texts))
	for i, text := range texts {
		intent := base
		intent.Text = text
		intents[i] = intent
	}

	lists, err := svc.MultiSearch(ctx, collection, intents)
	if err != nil {
		return err
	}

	for i, results := range lists {
		if len(texts) > 1 {
			color.New(color.Bold).Printf("query: %s\n", texts[i])
		}
		printResults(results)
		if i < len(lists)-1 {
			fmt.Println()
		}
	}
	return nil
}

func printResults(results []service.Result) {
	if len(results) == 0 {
		fmt.Println("no results")
		return
	}

	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)
	for i, r := range results {
		cyan.Printf("%d. %s", i+1, r.ID)
		fmt.Printf("  (similarity %.4f)\n", r.Similarity)

		if len(r.Metadata) > 0 {
			fields := make([]string, 0, len(r.Metadata))
			for f := range r.Metadata {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				faint.Printf("   %s=%s", f, domain.FormatMetadataValue(r.Metadata[f]))
			}
			fmt.Println()
		}

		fmt.Printf("   %s\n", r.Text)
	}
}

func runStats(ctx context.Context, cfg *config.Config, collection string) error {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := NewQueryService(cfg, st)
	if err != nil {
		return err
	}

	stats, err := svc.Stats(ctx, collection)
	if err != nil {
		return err
	}

	color.New(color.Bold).Printf("collection %s\n", stats.Collection)
	fmt.Printf("total chunks: %d\n", stats.TotalChunks)
	fmt.Printf("sampled: %d\n", stats.SampleSize)

	types := make([]string, 0, len(stats.ContentTypes))
	for t := range stats.ContentTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %s: %d\n", t, stats.ContentTypes[t])
	}
	return nil
}
