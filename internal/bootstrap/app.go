package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/archive"
	"resume-optimizer/internal/llm"
	anthropicllm "resume-optimizer/internal/llm/anthropic"
	"resume-optimizer/internal/llm/gemini"
	"resume-optimizer/internal/llm/openai"
	"resume-optimizer/internal/optimize"
	"resume-optimizer/internal/sequence"
	"resume-optimizer/internal/services/health"
	"resume-optimizer/internal/shared/config"
	"resume-optimizer/internal/shared/server"
	"resume-optimizer/internal/shared/storage/object"
	gdrivestore "resume-optimizer/internal/shared/storage/object/gdrive"
	localstore "resume-optimizer/internal/shared/storage/object/local"
	s3store "resume-optimizer/internal/shared/storage/object/s3"
	"resume-optimizer/internal/shared/telemetry"
	"resume-optimizer/resume/render"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	Store     object.Store
	Sequencer sequence.Sequencer
	LLM       llm.Client
	Archiver  *archive.Archiver
	Service   *optimize.Service
	Handler   *optimize.Handler
	Renderer  *render.PDFRenderer

	closers []func()
}

// Build validates cfg and wires every dependency, including the router.
func Build(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx := context.Background()

	store, err := BuildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Store: store}

	seq, err := app.buildSequencer(ctx)
	if err != nil {
		return nil, err
	}
	app.Sequencer = seq

	client, err := BuildLLM(ctx, cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.LLM = client

	app.Archiver = archive.New(store, cfg.ArchiveTimeout)
	app.Service = optimize.NewService(client, app.Archiver, seq)
	app.Service.ModelTimeout = cfg.ModelTimeout
	app.Renderer = render.NewPDFRenderer(cfg.ChromePath)
	app.Handler = optimize.NewHandler(app.Service, app.Renderer)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		OptimizeHandler: app.Handler,
		Health:          health.NewService(cfg.LLMProvider, cfg.ArchiveProvider),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":      cfg.Env,
		"provider": cfg.LLMProvider,
		"model":    cfg.LLMModel,
		"archive":  cfg.ArchiveProvider,
		"sequence": cfg.SequenceProvider,
	})
	return app, nil
}

// Close drains in-flight archival writes and releases connections.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	err := a.Archiver.Wait(ctx)
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	return err
}

// BuildStore returns the archive store selected by ARCHIVE_PROVIDER, or nil
// when archival is disabled.
func BuildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ArchiveProvider {
	case "none":
		return nil, nil
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			KMSKeyID:        cfg.SSEKMSKeyID,
		})
	case "gdrive":
		store, err := gdrivestore.New(ctx, gdrivestore.Options{
			RootFolderID: cfg.DriveFolderID,
			ClientEmail:  cfg.DriveClientEmail,
			PrivateKey:   cfg.DrivePrivateKey,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureFolders(ctx, object.FolderUploads, object.FolderResponses); err != nil {
			return nil, fmt.Errorf("drive folders: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildLLM returns the configured model client wrapped with call logging.
func BuildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case llm.ProviderOpenAI:
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case llm.ProviderAnthropic:
		client, err = anthropicllm.NewClient(anthropicllm.Options{APIKey: cfg.AnthropicAPIKey, Model: cfg.LLMModel})
	case llm.ProviderGemini, "":
		client, err = gemini.NewClient(ctx, gemini.Options{APIKey: cfg.GeminiAPIKey, Model: cfg.LLMModel})
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s client: %w", cfg.LLMProvider, err)
	}
	return llm.WithLogging(client, cfg.LLMProvider, cfg.LLMModel), nil
}

func (a *App) buildSequencer(ctx context.Context) (sequence.Sequencer, error) {
	switch a.Config.SequenceProvider {
	case "valkey":
		seq, err := sequence.NewValkey(ctx, a.Config.ValkeyURL, a.Config.ValkeyPassword, sequence.DefaultKey)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, seq.Close)
		return seq, nil
	case "folder":
		counter, ok := a.Store.(object.Counter)
		if !ok {
			return nil, errors.New("SEQUENCE_PROVIDER=folder requires an archive store that can count uploads")
		}
		return sequence.FolderCount{Counter: counter, Folder: object.FolderUploads}, nil
	default:
		return sequence.NewMemory(0), nil
	}
}
