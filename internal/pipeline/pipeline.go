// Package pipeline implements one publishing run: discover eligible source
// clips, download them, transform each into its platform rendition, and
// upload the results.
//
// The pipeline is stateless between runs; all scratch space comes from the
// workspace manager and is released on every exit path. Per-asset failures
// are accumulated and reported without aborting sibling assets; only
// stage-level preconditions (workspace, storage reachability) are fatal.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"autopost/internal/config"
	"autopost/internal/fileutil"
	"autopost/internal/logging"
	"autopost/internal/orchestrator"
	"autopost/internal/services/ffmpeg"
	"autopost/internal/storage"
	"autopost/internal/workspace"
)

// SelectionPolicy decides whether a discovered object is eligible for this
// run. The default policy (the tracker) selects objects never published
// before; tests and reprocessing swap in permissive policies.
type SelectionPolicy interface {
	Eligible(ctx context.Context, role storage.Role, key string) (bool, error)
}

// SelectAll is a SelectionPolicy that admits every discovered object.
type SelectAll struct{}

func (SelectAll) Eligible(context.Context, storage.Role, string) (bool, error) {
	return true, nil
}

// PublishRecorder marks sources as published once their rendition is
// uploaded.
type PublishRecorder interface {
	MarkPublished(ctx context.Context, role storage.Role, sourceKey, destKey, runID string) error
}

// Pipeline executes the download, transform, upload sequence for one run.
type Pipeline struct {
	cfg         *config.Config
	store       storage.ObjectStore
	transformer ffmpeg.Transformer
	workspace   *workspace.Manager
	policy      SelectionPolicy
	recorder    PublishRecorder
	logger      *slog.Logger
}

// New constructs a pipeline. policy and recorder may be nil, in which case
// every object is eligible and publishes are not recorded.
func New(
	cfg *config.Config,
	store storage.ObjectStore,
	transformer ffmpeg.Transformer,
	ws *workspace.Manager,
	policy SelectionPolicy,
	recorder PublishRecorder,
	logger *slog.Logger,
) *Pipeline {
	if policy == nil {
		policy = SelectAll{}
	}
	return &Pipeline{
		cfg:         cfg,
		store:       store,
		transformer: transformer,
		workspace:   ws,
		policy:      policy,
		recorder:    recorder,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes one full publishing run and reports its aggregate outcome.
// It never returns a partial workspace: scratch directories are emptied on
// every exit path.
func (p *Pipeline) Run(ctx context.Context, runID string) orchestrator.Result {
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))

	ws, err := p.workspace.Acquire()
	if err != nil {
		logger.Error("workspace unavailable", logging.Error(err))
		return orchestrator.Result{
			Code: orchestrator.CodeFatal,
			Body: fmt.Sprintf("workspace unavailable: %v", err),
		}
	}
	defer p.workspace.Release(ws)

	assets, err := p.discover(ctx, logger)
	if err != nil {
		logger.Error("asset discovery failed", logging.Error(err),
			logging.String(logging.FieldErrorHint, "check bucket configuration and storage reachability"),
		)
		return orchestrator.Result{
			Code: orchestrator.CodeFatal,
			Body: fmt.Sprintf("asset discovery failed: %v", err),
		}
	}
	if len(assets) == 0 {
		logger.Info("no eligible assets this run")
		return orchestrator.Result{Code: orchestrator.CodeSuccess, Body: "no eligible assets"}
	}
	logger.Info("run discovered assets", logging.Int("count", len(assets)))

	var failures []assetFailure
	downloaded := p.download(ctx, logger, ws, assets, &failures)
	transformed := p.transform(ctx, logger, ws, downloaded, &failures)
	published := p.upload(ctx, logger, runID, transformed, &failures)

	result := summarize(len(assets), published, failures)

	summaryAttrs := []logging.Attr{
		logging.Int("status_code", result.Code),
		logging.Int("published", published),
		logging.Int("total", len(assets)),
	}
	if len(failures) > 0 {
		summaryAttrs = append(summaryAttrs, logging.Int("failed", len(failures)))
		logger.Warn("run summary", logging.Args(summaryAttrs...)...)
	} else {
		logger.Info("run summary", logging.Args(summaryAttrs...)...)
	}

	return result
}

// discover lists the source roles and filters through the selection policy.
// List errors are fatal: an unreachable store means the run cannot make
// meaningful progress.
func (p *Pipeline) discover(ctx context.Context, logger *slog.Logger) ([]Asset, error) {
	var assets []Asset
	for _, role := range storage.SourceRoles {
		objects, err := p.store.List(ctx, role, p.cfg.Pipeline.SourcePrefix)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", role, err)
		}
		for _, obj := range objects {
			if !isVideoKey(obj.Key) {
				continue
			}
			eligible, err := p.policy.Eligible(ctx, role, obj.Key)
			if err != nil {
				return nil, fmt.Errorf("selection policy for %s/%s: %w", role, obj.Key, err)
			}
			if !eligible {
				continue
			}
			assets = append(assets, Asset{Role: role, Key: obj.Key})
		}
	}

	if limit := p.cfg.Pipeline.MaxAssetsPerRun; limit > 0 && len(assets) > limit {
		logger.Info("capping assets for this run",
			logging.Int("eligible", len(assets)),
			logging.Int("cap", limit),
		)
		assets = assets[:limit]
	}
	return assets, nil
}

func (p *Pipeline) download(ctx context.Context, logger *slog.Logger, ws workspace.WorkingSet, assets []Asset, failures *[]assetFailure) []Asset {
	var downloaded []Asset
	for _, asset := range assets {
		localPath := filepath.Join(ws.DownloadDir, localName(asset.Role, asset.Key))
		if err := p.store.Download(ctx, asset.Role, asset.Key, localPath); err != nil {
			logger.Warn("asset download failed",
				logging.String(logging.FieldRole, string(asset.Role)),
				logging.String(logging.FieldKey, asset.Key),
				logging.Error(err),
			)
			*failures = append(*failures, assetFailure{asset: asset, stage: "download", err: err})
			continue
		}
		asset.LocalPath = localPath
		downloaded = append(downloaded, asset)
	}
	return downloaded
}

// transform invokes the external media tool per asset, writing into the
// temp directory and finalizing into the output directory. Downstream
// consumers therefore never observe a partially written rendition.
func (p *Pipeline) transform(ctx context.Context, logger *slog.Logger, ws workspace.WorkingSet, assets []Asset, failures *[]assetFailure) []Asset {
	var transformed []Asset
	for _, asset := range assets {
		tempPath, err := p.transformer.Transform(ctx, asset.LocalPath, ws.TempDir, profileForRole(asset.Role))
		if err != nil {
			logger.Warn("asset transform failed",
				logging.String(logging.FieldRole, string(asset.Role)),
				logging.String(logging.FieldKey, asset.Key),
				logging.Error(err),
			)
			*failures = append(*failures, assetFailure{asset: asset, stage: "transform", err: err})
			continue
		}

		finalPath := filepath.Join(ws.OutputDir, filepath.Base(tempPath))
		if err := finalize(tempPath, finalPath); err != nil {
			logger.Warn("asset finalize failed",
				logging.String(logging.FieldKey, asset.Key),
				logging.Error(err),
			)
			*failures = append(*failures, assetFailure{asset: asset, stage: "finalize", err: err})
			continue
		}
		asset.TransformedPath = finalPath
		transformed = append(transformed, asset)
	}
	return transformed
}

func (p *Pipeline) upload(ctx context.Context, logger *slog.Logger, runID string, assets []Asset, failures *[]assetFailure) int {
	published := 0
	for _, asset := range assets {
		destKey := DestinationKey(p.cfg.Pipeline.DestPrefix, asset.Role, asset.Key)
		if err := p.store.Upload(ctx, asset.Role, destKey, asset.TransformedPath); err != nil {
			logger.Warn("asset upload failed",
				logging.String(logging.FieldRole, string(asset.Role)),
				logging.String(logging.FieldKey, asset.Key),
				logging.Error(err),
			)
			*failures = append(*failures, assetFailure{asset: asset, stage: "upload", err: err})
			continue
		}
		asset.DestKey = destKey
		published++

		if p.recorder != nil {
			if err := p.recorder.MarkPublished(ctx, asset.Role, asset.Key, destKey, runID); err != nil {
				logger.Warn("failed to record publish",
					logging.String(logging.FieldKey, asset.Key),
					logging.Error(err),
				)
			}
		}
		// The uploaded rendition is safe; drop the local copies early so
		// large runs do not accumulate scratch files.
		_ = os.Remove(asset.LocalPath)
		_ = os.Remove(asset.TransformedPath)
	}
	return published
}

// finalize moves a completed rendition from temp to output, falling back
// to a copy when the directories span filesystems.
func finalize(tempPath, finalPath string) error {
	if err := os.Rename(tempPath, finalPath); err == nil {
		return nil
	}
	if err := fileutil.CopyFile(tempPath, finalPath); err != nil {
		return err
	}
	return os.Remove(tempPath)
}

func summarize(total, published int, failures []assetFailure) orchestrator.Result {
	if len(failures) == 0 {
		return orchestrator.Result{
			Code: orchestrator.CodeSuccess,
			Body: fmt.Sprintf("published %d of %d assets", published, total),
		}
	}

	lines := make([]string, 0, len(failures))
	for _, failure := range failures {
		lines = append(lines, failure.String())
	}
	return orchestrator.Result{
		Code: orchestrator.CodePartial,
		Body: fmt.Sprintf("published %d of %d assets; %d failed: %s",
			published, total, len(failures), strings.Join(lines, "; ")),
	}
}
