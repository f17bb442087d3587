package translator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rclifen122/Office-Document-Translator/internal/config"
	"github.com/rclifen122/Office-Document-Translator/internal/document"
	"github.com/rclifen122/Office-Document-Translator/internal/progress"
	"github.com/rclifen122/Office-Document-Translator/pkg/providers"
)

// FileResult is the outcome of one file's translation job.
type FileResult struct {
	JobID         string
	InputFile     string
	OutputFile    string
	Units         int
	Translated    int
	FailedBatches int
	Duration      time.Duration
	Err           error
}

// Succeeded reports whether an output file was produced. Degraded files
// (some batches fell back to the original text) still count as succeeded.
func (r *FileResult) Succeeded() bool {
	return r.Err == nil
}

// Coordinator drives the extract-translate-apply-save pipeline.
type Coordinator struct {
	cfg      *config.Config
	log      *zap.Logger
	provider providers.Provider
	batcher  *Batcher
}

// NewCoordinator wires the pipeline together. The system prompt file is
// loaded (and created when missing) once per run.
func NewCoordinator(cfg *config.Config, provider providers.Provider, log *zap.Logger) *Coordinator {
	systemPrompt := LoadSystemPrompt(cfg.PromptFile, log)

	return &Coordinator{
		cfg:      cfg,
		log:      log,
		provider: provider,
		batcher: NewBatcher(provider, BatcherConfig{
			BatchSize:    cfg.BatchSize,
			MaxRetries:   cfg.MaxRetries,
			RetryDelay:   time.Duration(cfg.RetryBaseDelay) * time.Second,
			RequestDelay: time.Duration(cfg.RequestDelay) * time.Second,
			SystemPrompt: systemPrompt,
		}, log),
	}
}

// Run processes the given files sequentially on a single background worker
// goroutine, publishing progress to the reporter. The reporter is closed
// when the worker finishes, after which the results are delivered.
func (c *Coordinator) Run(ctx context.Context, paths []string, targetLang, outputDir string, reporter *progress.Reporter) <-chan []*FileResult {
	out := make(chan []*FileResult, 1)

	go func() {
		defer reporter.Close()

		results := make([]*FileResult, 0, len(paths))
		for _, path := range paths {
			result := c.translateOne(ctx, path, targetLang, outputDir, reporter)
			results = append(results, result)

			if result.Err != nil {
				c.log.Error("file failed, continuing with remaining files",
					zap.String("file", path),
					zap.Error(result.Err))
			}
		}
		out <- results
	}()

	return out
}

// translateOne runs the full pipeline for a single file. Any error is
// captured in the result; one broken file never aborts the run.
func (c *Coordinator) translateOne(ctx context.Context, path, targetLang, outputDir string, reporter *progress.Reporter) *FileResult {
	start := time.Now()
	result := &FileResult{
		JobID:     uuid.NewString(),
		InputFile: path,
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	languageName, err := LanguageName(targetLang)
	if err != nil {
		result.Err = err
		return result
	}

	log := c.log.With(zap.String("job", result.JobID[:8]), zap.String("file", filepath.Base(path)))

	doc, err := document.Open(path, log, document.Options{
		MinSlideCoverage: c.cfg.MinSlideCoverage,
	})
	if err != nil {
		result.Err = err
		return result
	}
	result.Units = len(doc.Units)

	reporter.Publish(progress.Event{
		JobID: result.JobID,
		File:  filepath.Base(path),
		Stage: progress.StageExtract,
		Units: len(doc.Units),
	})

	texts := make([]string, len(doc.Units))
	for i, unit := range doc.Units {
		texts[i] = document.CleanText(unit.Text)
	}

	translated, failures := c.batcher.TranslateAll(ctx, texts, languageName, result.JobID, filepath.Base(path), reporter)
	result.FailedBatches = len(failures)

	translations := make(map[string]string, len(doc.Units))
	for i, unit := range doc.Units {
		if translated[i] != texts[i] && translated[i] != "" {
			translations[unit.Loc.Key()] = translated[i]
		}
	}
	result.Translated = len(translations)

	reporter.Publish(progress.Event{
		JobID: result.JobID,
		File:  filepath.Base(path),
		Stage: progress.StageApply,
		Units: len(translations),
	})

	if err := doc.Apply(translations); err != nil {
		result.Err = fmt.Errorf("applying translations: %w", err)
		return result
	}

	outputPath := OutputPath(outputDir, path)
	if err := doc.Save(outputPath); err != nil {
		result.Err = err
		return result
	}
	result.OutputFile = outputPath

	log.Info("file translated",
		zap.Int("units", result.Units),
		zap.Int("translated", result.Translated),
		zap.Int("failed_batches", result.FailedBatches),
		zap.Duration("duration", time.Since(start)))

	reporter.Publish(progress.Event{
		JobID:   result.JobID,
		File:    filepath.Base(path),
		Stage:   progress.StageDone,
		Message: fmt.Sprintf("Done: %s", outputPath),
	})
	return result
}

// OutputPath builds the destination file name: the source base name with a
// "-translated" suffix, inside the output directory.
func OutputPath(outputDir, inputPath string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(outputDir, name+"-translated"+ext)
}

// CollectFiles lists the translatable Office files in a directory,
// skipping Office lock files and unsupported types.
func CollectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if document.IsTempFile(name) || document.DetectType(name) == document.TypeUnknown {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
