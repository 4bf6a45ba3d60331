package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuery string
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a single question",
	Long: `Run one relevance-ranked query against the indexed corpus and print
the matching answers.

Examples:
  faqbot ask -q "how do I reset my password"
  faqbot ask -q "opening hours" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question text (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output matching records as JSON")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	svc := newService(b)
	if err := svc.EnsureCollection(cmd.Context()); err != nil {
		return fmt.Errorf("failed to prepare collection: %w", err)
	}

	records, err := svc.Answer(cmd.Context(), askQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		output, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	renderAnswers(records, cfg.Chat.Fallback)
	return nil
}
