package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"faqbot/internal/domain"
)

var chatCorpus string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question loop",
	Long: `Read questions from standard input, one per line, and answer each
from the indexed corpus. Type "exit" to leave.

With --corpus the file is ingested before the loop starts, which makes the
memory engine usable for one-off sessions:

  faqbot chat
  faqbot chat --corpus corpus.json`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatCorpus, "corpus", "", "corpus file or glob to ingest before chatting")
}

func runChat(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	svc := newService(b)

	// A service that cannot reach ready state is fatal; everything after
	// this point keeps the loop alive.
	if err := svc.EnsureCollection(cmd.Context()); err != nil {
		return fmt.Errorf("failed to prepare collection: %w", err)
	}

	if chatCorpus != "" {
		if _, _, err := ingestCorpus(cmd, svc, chatCorpus); err != nil {
			return err
		}
	}

	fmt.Println(`Ask me anything. Type "exit" to leave.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(line, "exit") {
			fmt.Println("Bye!")
			break
		}

		records, err := svc.Answer(cmd.Context(), line)
		if err != nil {
			fmt.Printf("Something went wrong: %v\n", err)
			continue
		}

		renderAnswers(records, cfg.Chat.Fallback)
	}

	return scanner.Err()
}

// renderAnswers prints each answer of a result set, or the fallback when
// the set is empty.
func renderAnswers(records []domain.Record, fallback string) {
	if len(records) == 0 {
		fmt.Println(fallback)
		return
	}
	if len(records) == 1 {
		fmt.Println(records[0].Answer())
		return
	}
	for i, rec := range records {
		fmt.Printf("[%d] %s\n", i+1, rec.Answer())
	}
}
