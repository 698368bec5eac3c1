package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"subburn/internal/config"
	"subburn/internal/ffmpeg"
	"subburn/internal/logging"
	"subburn/internal/model"
	"subburn/internal/pipeline"
	"subburn/internal/render"
	"subburn/internal/store"
	"subburn/internal/transcribe"
	"subburn/internal/translate"
	"subburn/internal/video"
)

// app bundles the wired processing stack shared by the serve and process
// commands.
type app struct {
	cfg      *config.Config
	records  *store.Store
	pipeline *pipeline.Pipeline
	log      *logging.Logger
}

func buildApp(ctx context.Context, cfg *config.Config, log *logging.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if _, err := ffmpeg.Ensure(); err != nil {
		return nil, err
	}

	records, err := store.Open(cfg.Paths.DataDir)
	if err != nil {
		return nil, err
	}
	log.Debugw("record store opened", "path", records.Path())

	transcriber, err := transcribe.NewWhisperTranscriber(cfg.Whisper.APIKey, cfg.Whisper.Model, log)
	if err != nil {
		_ = records.Close()
		return nil, err
	}

	remote, err := translate.NewRemoteTranslator(ctx, translate.Provider(cfg.Remote.Provider), cfg.Remote.APIKey, cfg.Remote.Model)
	if err != nil {
		_ = records.Close()
		return nil, fmt.Errorf("remote translator: %w", err)
	}

	hubOpts := []model.HubOption{
		model.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Hub.ProbeTimeoutSeconds) * time.Second}),
	}
	if cfg.Hub.BaseURL != "" {
		hubOpts = append(hubOpts, model.WithHubBaseURL(cfg.Hub.BaseURL))
	}
	if cfg.Hub.InferenceBaseURL != "" {
		hubOpts = append(hubOpts, model.WithInferenceBaseURL(cfg.Hub.InferenceBaseURL))
	}
	if cfg.Hub.Token != "" {
		hubOpts = append(hubOpts, model.WithToken(cfg.Hub.Token))
	}
	repo := model.NewHubRepository(hubOpts...)
	resolver := model.NewResolver(repo, model.NewCache(), log)

	proc := video.NewProcessor()
	stage := translate.NewStage(resolver, remote, log)
	renderer := render.NewRenderer(proc, cfg.Paths.OutputDir, cfg.Paths.FontsDir, log)

	pipe := pipeline.New(proc, transcriber, stage, renderer, records, cfg.Paths.DataDir, log)

	return &app{cfg: cfg, records: records, pipeline: pipe, log: log}, nil
}

func (a *app) Close() error {
	return a.records.Close()
}
