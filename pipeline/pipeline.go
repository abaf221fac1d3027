package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/camden-git/personagen/config"
	"github.com/camden-git/personagen/ingest"
	"github.com/camden-git/personagen/llm"
	"github.com/camden-git/personagen/media"
	"github.com/camden-git/personagen/repository"
	"github.com/camden-git/personagen/sdapi"
)

// StageSummary reports per-record outcomes of one prompt or image stage run
type StageSummary struct {
	RunID     string `json:"run_id"`
	Pending   int    `json:"pending"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// RunSummary aggregates a full ingest-prompts-images run
type RunSummary struct {
	RunID   string         `json:"run_id"`
	Ingest  ingest.Summary `json:"ingest"`
	Prompts StageSummary   `json:"prompts"`
	Images  StageSummary   `json:"images"`
}

// Pipeline sequences the three stages over the shared record store. It holds
// no state of its own between invocations; each stage recomputes its pending
// set from stored statuses, so re-running any stage is always safe.
type Pipeline struct {
	Cfg   config.Config
	Repo  repository.ProfileRepositoryInterface
	LLM   *llm.Client
	SD    *sdapi.Client
	Store *media.PortraitStore
}

// New wires a pipeline from its collaborators
func New(cfg config.Config, repo repository.ProfileRepositoryInterface, llmClient *llm.Client, sdClient *sdapi.Client, store *media.PortraitStore) *Pipeline {
	return &Pipeline{
		Cfg:   cfg,
		Repo:  repo,
		LLM:   llmClient,
		SD:    sdClient,
		Store: store,
	}
}

// Ingest scans the configured data directory into the record store
func (p *Pipeline) Ingest(ctx context.Context) (ingest.Summary, error) {
	_ = ctx // ingestion is local-only; kept for symmetry with the remote stages
	loader := ingest.NewLoader(p.Repo)

	log.Printf("pipeline: ingesting from %s", p.Cfg.DataDirectory)
	summary, err := loader.Run(p.Cfg.DataDirectory)
	if err != nil {
		return summary, err
	}

	log.Printf("pipeline: ingest complete: %d files, %d inserted, %d skipped, %d failed",
		summary.FilesProcessed, summary.Inserted, summary.Skipped, summary.Failed)
	return summary, nil
}

// GeneratePrompts runs the prompt stage over every pending profile, one at a
// time. A failed record is logged and counted; the batch continues.
func (p *Pipeline) GeneratePrompts(ctx context.Context) (StageSummary, error) {
	summary := StageSummary{RunID: uuid.NewString()}

	profiles, err := p.Repo.ListPendingPrompts()
	if err != nil {
		return summary, fmt.Errorf("failed to load profiles pending prompts: %w", err)
	}
	summary.Pending = len(profiles)
	log.Printf("pipeline: [%s] %d profiles need prompts", summary.RunID, len(profiles))

	for i, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		pair, err := p.LLM.GeneratePromptPair(ctx, &profile)
		if err != nil {
			log.Printf("pipeline: prompt generation failed for admin %d (%s): %v", profile.AdminID, profile.DisplayName(), err)
			summary.Failed++
		} else if err := p.Repo.MarkPromptDone(profile.AdminID, pair.Positive, pair.Negative); err != nil {
			log.Printf("pipeline: failed to store prompts for admin %d: %v", profile.AdminID, err)
			summary.Failed++
		} else {
			log.Printf("pipeline: prompt generated for admin %d (%s)", profile.AdminID, profile.DisplayName())
			summary.Succeeded++
		}

		if i < len(profiles)-1 {
			if err := sleepCtx(ctx, p.Cfg.PromptDelay); err != nil {
				return summary, err
			}
		}
	}

	log.Printf("pipeline: [%s] prompt stage complete: %d/%d succeeded", summary.RunID, summary.Succeeded, summary.Pending)
	return summary, nil
}

// GenerateImages runs the image stage over every prompted profile. The stored
// status is the sole gate: an existing file on disk is overwritten, never
// skipped.
func (p *Pipeline) GenerateImages(ctx context.Context) (StageSummary, error) {
	summary := StageSummary{RunID: uuid.NewString()}

	profiles, err := p.Repo.ListPendingImages()
	if err != nil {
		return summary, fmt.Errorf("failed to load profiles pending images: %w", err)
	}
	summary.Pending = len(profiles)
	log.Printf("pipeline: [%s] %d profiles need images", summary.RunID, len(profiles))

	for i, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if profile.PositivePrompt == nil || profile.NegativePrompt == nil {
			log.Printf("pipeline: admin %d is prompted but has no stored prompts, skipping", profile.AdminID)
			summary.Failed++
			continue
		}

		imageData, err := p.SD.Txt2Img(ctx, *profile.PositivePrompt, *profile.NegativePrompt)
		if err != nil {
			log.Printf("pipeline: image generation failed for admin %d (%s): %v", profile.AdminID, profile.DisplayName(), err)
			summary.Failed++
		} else if outputPath, err := p.Store.Save(&profile, imageData); err != nil {
			log.Printf("pipeline: failed to save portrait for admin %d: %v", profile.AdminID, err)
			summary.Failed++
		} else if err := p.Repo.MarkImageDone(profile.AdminID, outputPath); err != nil {
			log.Printf("pipeline: failed to record image result for admin %d: %v", profile.AdminID, err)
			summary.Failed++
		} else {
			log.Printf("pipeline: image generated for admin %d (%s)", profile.AdminID, profile.DisplayName())
			summary.Succeeded++
		}

		if i < len(profiles)-1 {
			if err := sleepCtx(ctx, p.Cfg.ImageDelay); err != nil {
				return summary, err
			}
		}
	}

	log.Printf("pipeline: [%s] image stage complete: %d/%d succeeded", summary.RunID, summary.Succeeded, summary.Pending)
	return summary, nil
}

// RunAll runs ingest, then prompts, then images. Per-record failures inside a
// stage never stop the next stage from running.
func (p *Pipeline) RunAll(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	log.Printf("pipeline: [%s] starting full run", summary.RunID)

	ingestSummary, err := p.Ingest(ctx)
	summary.Ingest = ingestSummary
	if err != nil {
		return summary, err
	}

	promptSummary, err := p.GeneratePrompts(ctx)
	summary.Prompts = promptSummary
	if err != nil {
		return summary, err
	}

	imageSummary, err := p.GenerateImages(ctx)
	summary.Images = imageSummary
	if err != nil {
		return summary, err
	}

	log.Printf("pipeline: [%s] full run complete", summary.RunID)
	return summary, nil
}

// Validate checks required credentials and probes the image generation
// endpoint. Failures here are fatal configuration errors.
func (p *Pipeline) Validate(ctx context.Context) error {
	if err := p.Cfg.Validate(); err != nil {
		return err
	}
	if err := p.SD.Ping(ctx); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	return nil
}

// sleepCtx pauses between collaborator calls without ignoring cancellation
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
