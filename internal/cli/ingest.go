package cli

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docvec/docvec/internal/config"
	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/service"
	"github.com/docvec/docvec/internal/storage"
	"github.com/docvec/docvec/internal/store"
)

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		collection   string
		reset        bool
		includeTypes []string
		excludeTypes []string
		batchSize    int
		bestEffort   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <source.json|s3://bucket/key>",
		Short: "Load a RAG JSON document into the vector store",
		Long: `Load chunks from a RAG JSON export into the configured vector store.

The source may be a local file or an s3:// URI. Chunks are normalized,
enriched with derived metadata and written in batches; each batch is
embedded with a single provider call.

Examples:
  docvec ingest chunks.json
  docvec ingest s3://exports/10q_3q25.json --collection filings --reset
  docvec ingest chunks.json --include-types table
  docvec ingest chunks.json --best-effort`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if collection == "" {
				collection = cfg.Collection
			}
			if batchSize == 0 {
				batchSize = cfg.BatchSize
			}
			return runIngest(cmd.Context(), cfg, ingestOptions{
				Source:       args[0],
				Collection:   collection,
				Reset:        reset,
				IncludeTypes: includeTypes,
				ExcludeTypes: excludeTypes,
				BatchSize:    batchSize,
				BestEffort:   bestEffort,
			})
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "Target collection (default from DOCVEC_COLLECTION)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete the collection before loading")
	cmd.Flags().StringSliceVar(&includeTypes, "include-types", nil, "Only load chunks with these content types")
	cmd.Flags().StringSliceVar(&excludeTypes, "exclude-types", nil, "Skip chunks with these content types")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Chunks per embedding batch (default from DOCVEC_BATCH_SIZE)")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "Continue past failed batches and report them at the end")

	return cmd
}

type ingestOptions struct {
	Source       string
	Collection   string
	Reset        bool
	IncludeTypes []string
	ExcludeTypes []string
	BatchSize    int
	BestEffort   bool
}

func runIngest(ctx context.Context, cfg *config.Config, opts ingestOptions) error {
	reader, err := newSourceReader(ctx, cfg, opts.Source)
	if err != nil {
		return err
	}

	data, err := reader.Read(ctx, opts.Source)
	if err != nil {
		return err
	}

	doc, err := service.ParseSource(data)
	if err != nil {
		return err
	}

	normalizer := service.NewNormalizer()
	chunks, err := normalizer.NormalizeAll(doc.Chunks)
	if err != nil {
		return err
	}

	typeFilter, err := service.NewTypeFilter(opts.IncludeTypes, opts.ExcludeTypes)
	if err != nil {
		return err
	}
	enricher := service.NewEnricher(typeFilter)
	enriched := enricher.EnrichAll(chunks)

	printDistribution(doc.SourceFile, len(chunks), enriched)
	// a reset still has to clear the collection even when filtering
	// leaves nothing to load
	if len(enriched) == 0 && !opts.Reset {
		fmt.Println("nothing to load after filtering")
		return nil
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return loadChunks(ctx, st, opts, enriched)
}

func loadChunks(ctx context.Context, st store.VectorStore, opts ingestOptions, enriched []domain.Chunk) error {
	loader, err := service.NewBatchLoader(st, service.LoaderConfig{
		Collection: opts.Collection,
		BatchSize:  opts.BatchSize,
		Reset:      opts.Reset,
		BestEffort: opts.BestEffort,
		OnProgress: func(processed, total int) {
			fmt.Printf("\rloaded %d/%d chunks", processed, total)
		},
	})
	if err != nil {
		return err
	}

	result, err := loader.Load(ctx, enriched)
	fmt.Println()
	if err != nil {
		return err
	}

	if len(enriched) == 0 {
		fmt.Printf("collection %q reset; nothing to load after filtering\n", opts.Collection)
		return nil
	}

	count, err := st.Count(ctx, opts.Collection)
	if err != nil {
		log.Printf("loaded %d chunks but count failed: %v", result.Loaded, err)
		return nil
	}

	green := color.New(color.FgGreen)
	green.Printf("done: %d chunks loaded in %d batches; collection %q now holds %d documents\n",
		result.Loaded, result.Batches, opts.Collection, count)
	return nil
}

// newSourceReader attaches an S3 client only when the source needs one.
func newSourceReader(ctx context.Context, cfg *config.Config, source string) (*storage.SourceReader, error) {
	if !storage.IsS3URI(source) {
		return storage.NewSourceReader(nil), nil
	}
	if !cfg.HasS3() {
		return storage.NewSourceReader(nil), nil
	}
	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewSourceReader(s3Client), nil
}

// printDistribution prints the content-type breakdown before loading.
func printDistribution(sourceFile string, total int, chunks []domain.Chunk) {
	bold := color.New(color.Bold)
	if sourceFile != "" {
		bold.Printf("%s: ", sourceFile)
	}
	fmt.Printf("%d chunks parsed, %d after filtering\n", total, len(chunks))

	dist := service.ContentTypeDistribution(chunks)
	types := make([]string, 0, len(dist))
	for t := range dist {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s=%d", t, dist[t]))
	}
	if len(parts) > 0 {
		fmt.Printf("content types: %s\n", strings.Join(parts, " "))
	}
}
