package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/ingest"
	"github.com/Cyclone1070/secondbrain/internal/provider/gemini"
	"github.com/Cyclone1070/secondbrain/internal/rag"
	"github.com/Cyclone1070/secondbrain/internal/retrieval"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/path"
	"github.com/Cyclone1070/secondbrain/internal/ui"
	"github.com/Cyclone1070/secondbrain/internal/vectorstore"
	"github.com/Cyclone1070/secondbrain/internal/workflow"
	"github.com/Cyclone1070/secondbrain/internal/workflow/loop"
	"github.com/Cyclone1070/secondbrain/internal/workflow/toolmanager"
	"github.com/sirupsen/logrus"
)

type assistant interface {
	Ask(ctx context.Context, question string) (rag.Answer, error)
	Stream(ctx context.Context, question string, onChunk func(string)) (rag.Answer, error)
}

type agent interface {
	Run(ctx context.Context, prompt string) (string, error)
}

type ingestRunner interface {
	Run(ctx context.Context) (ingest.Stats, error)
}

type noteWatcher interface {
	Run(ctx context.Context) error
}

// agentOptions are the per-invocation agent settings.
type agentOptions struct {
	workdir string
	verbose bool
	events  chan<- workflow.Event
}

// deps holds the process-wide state and the factories the commands build
// their collaborators with. Tests swap the factories for fakes.
type deps struct {
	stdin  io.Reader
	stdout io.Writer
	styled bool
	logger *logrus.Logger

	cfg     *config.Config
	secrets *config.Secrets
	printer *ui.Printer

	loadConfig   func() (*config.Config, error)
	loadSecrets  func(envFile string) (*config.Secrets, error)
	newAssistant func(ctx context.Context, d *deps) (assistant, error)
	newAgent     func(ctx context.Context, d *deps, opts agentOptions) (agent, error)
	newIngest    func(ctx context.Context, d *deps, vault string) (ingestRunner, noteWatcher, error)
}

func realDeps() *deps {
	return &deps{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		styled:       ui.IsTerminal(os.Stdout),
		logger:       logrus.StandardLogger(),
		loadConfig:   config.Load,
		loadSecrets:  loadSecrets,
		newAssistant: buildAssistant,
		newAgent:     buildAgent,
		newIngest:    buildIngest,
	}
}

func loadSecrets(envFile string) (*config.Secrets, error) {
	if envFile == "" {
		return config.LoadSecrets()
	}
	return config.LoadSecrets(envFile)
}

func buildProvider(ctx context.Context, d *deps) (*gemini.GeminiProvider, error) {
	if err := d.secrets.RequireGemini(); err != nil {
		return nil, err
	}
	client, err := gemini.NewClient(ctx, d.secrets.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	p := gemini.New(client, d.cfg)
	d.logger.WithField("model", p.Model()).Debug("using Gemini provider")
	return p, nil
}

func buildStore(ctx context.Context, d *deps, createDimension int32) (*vectorstore.PineconeStore, error) {
	if err := d.secrets.RequirePinecone(); err != nil {
		return nil, err
	}
	return vectorstore.Connect(ctx, vectorstore.ConnectParams{
		APIKey:          d.secrets.PineconeAPIKey,
		IndexName:       d.secrets.PineconeIndexName,
		Namespace:       d.cfg.Retrieval.Namespace,
		CreateDimension: createDimension,
	}, d.logger)
}

func buildAssistant(ctx context.Context, d *deps) (assistant, error) {
	llm, err := buildProvider(ctx, d)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, d, 0)
	if err != nil {
		return nil, err
	}
	searcher := retrieval.NewSearcher(llm, store, d.cfg, d.logger)
	return rag.NewAssistant(searcher, llm, d.cfg, d.logger), nil
}

func buildAgent(ctx context.Context, d *deps, opts agentOptions) (agent, error) {
	root, err := path.CanonicaliseRoot(opts.workdir)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}
	llm, err := buildProvider(ctx, d)
	if err != nil {
		return nil, err
	}

	tools := toolmanager.NewWorkspaceToolManager(root, d.cfg, d.logger)
	tools.SetVerbose(opts.verbose)
	return loop.NewLoop(llm, tools, opts.events, d.cfg.Workflow.MaxIterations), nil
}

func buildIngest(ctx context.Context, d *deps, vault string) (ingestRunner, noteWatcher, error) {
	if vault == "" {
		return nil, nil, fmt.Errorf("%w: %s (or pass --vault)", config.ErrMissingSecret, config.EnvVaultPath)
	}
	loader, err := ingest.NewVaultLoader(vault, []string{d.cfg.Ingest.IgnoreFile, ".gitignore"}, d.logger)
	if err != nil {
		return nil, nil, err
	}
	llm, err := buildProvider(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	store, err := buildStore(ctx, d, d.cfg.Ingest.Dimension)
	if err != nil {
		return nil, nil, err
	}

	in := ingest.NewIngester(loader, llm, store, d.cfg, d.logger)
	return in, ingest.NewWatcher(loader, in, ingest.DefaultDebounce, d.logger), nil
}
