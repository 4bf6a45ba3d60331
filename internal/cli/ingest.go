package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"faqbot/internal/adapter/loader"
	"faqbot/internal/usecase"
)

var ingestBatchSize int

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-glob>",
	Short: "Index a corpus of question/answer records",
	Long: `Load question/answer records from a JSON corpus file and index them
into the configured backend collection. The argument may be a doublestar
glob matching several corpus files.

Examples:
  faqbot ingest corpus.json
  faqbot ingest 'corpora/**/*.json'`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 500, "records per bulk request")
}

func runIngest(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	svc := newService(b)
	if err := svc.EnsureCollection(cmd.Context()); err != nil {
		return fmt.Errorf("failed to prepare collection: %w", err)
	}

	loaded, indexed, err := ingestCorpus(cmd, svc, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Records loaded:  %d\n", loaded)
	fmt.Printf("  Records indexed: %d\n", indexed)
	fmt.Printf("  Collection:      %s\n", svc.Collection())
	return nil
}

// ingestCorpus loads the corpus matching pattern and bulk-indexes it in
// batches, with a progress bar. Returns loaded and indexed counts.
func ingestCorpus(cmd *cobra.Command, svc *usecase.Service, pattern string) (int, int, error) {
	records, err := loader.NewJSONLoader().LoadGlob(pattern)
	if err != nil {
		return 0, 0, err
	}

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	batchSize := ingestBatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	indexed := 0
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}

		n, err := svc.IndexRecords(cmd.Context(), records[i:end])
		indexed += n
		if err != nil {
			fmt.Println()
			return len(records), indexed, fmt.Errorf("indexed %d of %d records: %w", indexed, len(records), err)
		}
		bar.Set(indexed)
	}

	return len(records), indexed, nil
}
