package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"faqbot/config"
	"faqbot/internal/adapter/analyzer"
	"faqbot/internal/adapter/backend"
	"faqbot/internal/port"
	"faqbot/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "faqbot",
	Short: "A minimal document-retrieval chatbot",
	Long: `faqbot indexes question/answer records into a full-text search backend
and answers free-text questions with the best-matching records.

Example usage:
  faqbot ingest corpus.json        # Index a corpus file
  faqbot ask -q "reset password"   # One-shot question
  faqbot chat                      # Interactive question loop`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogging(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./faqbot.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

// openBackend builds the configured search backend.
func openBackend() (port.SearchBackend, error) {
	switch cfg.Backend.Engine {
	case "bolt", "":
		if err := config.EnsureDataDir(rootDir); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		tok := analyzer.NewTokenizer(cfg.Index.Stemming)
		return backend.NewBoltBackend(config.StorePath(rootDir), tok, cfg.Index.K1, cfg.Index.B)
	case "memory":
		tok := analyzer.NewTokenizer(cfg.Index.Stemming)
		return backend.NewMemoryBackend(tok, cfg.Index.K1, cfg.Index.B), nil
	case "elastic":
		return backend.NewElasticBackend(cfg.Backend.Addresses)
	default:
		return nil, fmt.Errorf("unsupported backend engine: %s", cfg.Backend.Engine)
	}
}

// newService wires the retrieval service to the configured backend.
func newService(b port.SearchBackend) *usecase.Service {
	return usecase.New(b, cfg.Backend.Collection, cfg.Retrieve.TopK, slog.Default())
}
