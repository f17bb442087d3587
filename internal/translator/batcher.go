package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rclifen122/Office-Document-Translator/internal/progress"
	"github.com/rclifen122/Office-Document-Translator/pkg/providers"
	"github.com/rclifen122/Office-Document-Translator/pkg/providers/retry"
)

// BatchFailure records a batch whose retries were exhausted. The affected
// segments keep their original text in the output.
type BatchFailure struct {
	Batch int // 1-based
	Size  int
	Err   error
}

// Batcher groups text segments into delimiter-joined API calls, validates
// the segment count of every reply, retries transient failures with
// exponential backoff, and degrades to the original text when a batch
// cannot be translated.
type Batcher struct {
	provider     providers.Provider
	retrier      *retry.Retrier
	log          *zap.Logger
	batchSize    int
	requestDelay time.Duration
	systemPrompt string
}

// BatcherConfig tunes a Batcher.
type BatcherConfig struct {
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration // base backoff, doubled per attempt
	RequestDelay time.Duration // pause between API calls
	SystemPrompt string
}

// NewBatcher creates a Batcher.
func NewBatcher(provider providers.Provider, cfg BatcherConfig, log *zap.Logger) *Batcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Batcher{
		provider: provider,
		retrier: retry.New(retry.Config{
			MaxRetries:    cfg.MaxRetries,
			InitialDelay:  cfg.RetryDelay,
			MaxDelay:      2 * time.Minute,
			BackoffFactor: 2.0,
		}),
		log:          log,
		batchSize:    cfg.BatchSize,
		requestDelay: cfg.RequestDelay,
		systemPrompt: cfg.SystemPrompt,
	}
}

// TranslateAll translates texts into the named language. The returned
// slice is index-aligned with the input: segments of failed batches hold
// their original text. Progress is published per batch and attempt under
// the given job ID and file name.
func (b *Batcher) TranslateAll(ctx context.Context, texts []string, languageName, jobID, file string, reporter *progress.Reporter) ([]string, []BatchFailure) {
	results := make([]string, len(texts))
	copy(results, texts)
	if len(texts) == 0 {
		return results, nil
	}

	batches := chunk(texts, b.batchSize)
	var failures []BatchFailure

	for i, batch := range batches {
		if i > 0 && b.requestDelay > 0 {
			select {
			case <-ctx.Done():
				failures = append(failures, BatchFailure{Batch: i + 1, Size: len(batch), Err: ctx.Err()})
				continue
			case <-time.After(b.requestDelay):
			}
		}

		translated, err := b.translateBatch(ctx, batch, languageName, jobID, file, i+1, len(batches), reporter)
		if err != nil {
			b.log.Warn("batch failed after retries, keeping original text",
				zap.Int("batch", i+1),
				zap.Int("segments", len(batch)),
				zap.Error(err))
			failures = append(failures, BatchFailure{Batch: i + 1, Size: len(batch), Err: err})
			continue
		}

		copy(results[i*b.batchSize:], translated)
	}

	return results, failures
}

// translateBatch performs one batch with the retry policy. A reply whose
// segment count differs from the request is a failed attempt, never a
// partial success.
func (b *Batcher) translateBatch(ctx context.Context, batch []string, languageName, jobID, file string, batchNum, totalBatches int, reporter *progress.Reporter) ([]string, error) {
	joined := strings.Join(batch, Delimiter)
	var translated []string

	err := b.retrier.Do(ctx, func(ctx context.Context, attempt int) error {
		reporter.Publish(progress.Event{
			JobID:        jobID,
			File:         file,
			Stage:        progress.StageTranslate,
			Batch:        batchNum,
			TotalBatches: totalBatches,
			Attempt:      attempt,
		})
		if attempt > 1 {
			b.log.Info("retrying batch",
				zap.Int("batch", batchNum),
				zap.Int("attempt", attempt))
		}

		resp, err := b.provider.Translate(ctx, &providers.Request{
			SystemPrompt: b.systemPrompt,
			UserPrompt:   userPrompt(languageName, joined),
		})
		if err != nil {
			return err
		}

		segments := splitSegments(resp.Text)
		if len(segments) != len(batch) {
			return providers.NewRetryableError(providers.ErrCodeResponse,
				fmt.Sprintf("segment count mismatch: sent %d, got %d", len(batch), len(segments)), nil)
		}

		translated = segments
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug("batch translated",
		zap.Int("batch", batchNum),
		zap.Int("segments", len(batch)))
	return translated, nil
}

// chunk splits texts into slices of at most size elements, preserving
// order.
func chunk(texts []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[start:end])
	}
	return batches
}

// splitSegments splits a model reply on the delimiter and trims the
// whitespace models like to add around it.
func splitSegments(s string) []string {
	parts := strings.Split(strings.TrimSpace(s), Delimiter)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
