package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rclifen122/Office-Document-Translator/internal/config"
	"github.com/rclifen122/Office-Document-Translator/internal/logger"
	"github.com/rclifen122/Office-Document-Translator/internal/progress"
	"github.com/rclifen122/Office-Document-Translator/internal/translator"
	"github.com/rclifen122/Office-Document-Translator/pkg/providers/openai"
)

var (
	cfgFile    string
	targetLang string
	inputFile  string
	inputDir   string
	outputDir  string
	debugMode  bool
)

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "office-translator",
		Short: "Translate Office documents while preserving their formatting",
		Long: `office-translator extracts text from Excel, Word and PowerPoint files,
translates it in batches through an OpenAI-compatible API, and writes the
result to a copy of the original file. Formatting, layout, images and
styles are preserved; only the text changes.

By default every supported file in the input directory is translated into
the output directory. A single file can be selected with --file.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&targetLang, "to", "ja", "target language code (ja, vi, en, th, zh, ko, ...)")
	rootCmd.PersistentFlags().StringVar(&inputFile, "file", "", "translate a single file instead of the input directory")
	rootCmd.PersistentFlags().StringVar(&inputDir, "dir", "", "input directory (default from config: input)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "output directory (default from config: output)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	return rootCmd
}

func run(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, cfg)

	log := logger.NewLogger(cfg.Debug)
	defer func() {
		_ = log.Sync()
	}()

	if cfg.APIKey == "" {
		log.Warn("no API key configured; translation calls will fail " +
			"(set api_key in the config file or the GEMINI_API_KEY environment variable)")
	}

	paths, err := collectInput(cfg, log)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Printf("No Office files found in %s\n", cfg.InputDir)
		return nil
	}

	providerConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		providerConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		providerConfig.Model = cfg.Model
	}
	providerConfig.Timeout = cfg.Timeout()
	provider := openai.New(providerConfig)

	coordinator := translator.NewCoordinator(cfg, provider, log)

	reporter := progress.NewReporter()
	resultCh := coordinator.Run(cmd.Context(), paths, targetLang, cfg.OutputDir, reporter)

	// render progress on this goroutine while the worker translates
	progress.NewBarRenderer().Run(reporter.Events())
	results := <-resultCh

	fmt.Println(translator.RenderSummary(results))

	if translator.HasFailures(results) {
		return fmt.Errorf("some files failed to translate")
	}
	return nil
}

// applyFlags lets command-line flags override the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dir") {
		cfg.InputDir = inputDir
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debugMode
	}
}

// collectInput resolves the file list: a single file when --file is given,
// otherwise every supported file in the input directory. The default input
// directory is created when missing so first runs have somewhere to put
// their files.
func collectInput(cfg *config.Config, log *zap.Logger) ([]string, error) {
	if inputFile != "" {
		if _, err := os.Stat(inputFile); err != nil {
			return nil, fmt.Errorf("input file: %w", err)
		}
		return []string{inputFile}, nil
	}

	if _, err := os.Stat(cfg.InputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.InputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating input directory: %w", err)
		}
		log.Info("created input directory", zap.String("dir", cfg.InputDir))
		return nil, nil
	}

	return translator.CollectFiles(cfg.InputDir)
}
