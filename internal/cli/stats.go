package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"faqbot/internal/adapter/backend"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Long:  `Print record and term counts for the embedded index.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	bolt, ok := b.(*backend.BoltBackend)
	if !ok {
		return fmt.Errorf("stats requires the embedded bolt engine (configured: %s)", cfg.Backend.Engine)
	}

	name := cfg.Backend.Collection
	exists, err := bolt.Store().CollectionExists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no collection %q. Run 'faqbot ingest' first", name)
	}

	stats, err := bolt.Store().GetStats(name)
	if err != nil {
		return err
	}

	fmt.Printf("Collection: %s\n", name)
	fmt.Printf("  Records:            %d\n", stats.TotalRecords)
	fmt.Printf("  Distinct terms:     %d\n", stats.TotalTerms)
	fmt.Printf("  Avg message length: %.1f tokens\n", stats.AvgRecordLen)
	return nil
}
