package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-doctemplate/internal/config"
	"github.com/goliatone/go-doctemplate/pkg/catalog"
	"github.com/goliatone/go-doctemplate/pkg/httpapi"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/persistence"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/session"
	"github.com/goliatone/go-doctemplate/pkg/store"
)

// Backend saves documents and notifies counterparties.
type Backend interface {
	session.Saver
	session.Notifier
}

// App holds the wired components shared by the commands.
type App struct {
	Config       config.Config
	Logger       *zap.Logger
	Store        *store.Service
	Orchestrator *orchestrator.Orchestrator
	Sessions     *session.Manager
	Backend      Backend
}

// New wires the store, orchestrator, persistence backend and session manager
// from cfg.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	storeOpts := []store.Option{store.WithLogger(logger), store.WithTimeout(cfg.Store.Timeout)}
	if cfg.Store.RemoteURL != "" {
		storeOpts = append(storeOpts, store.WithRemoteURL(cfg.Store.RemoteURL))
	}
	if cfg.Store.LocalCatalog != "" {
		storeOpts = append(storeOpts, store.WithLocalSource(catalog.SourceFromFile(cfg.Store.LocalCatalog)))
	}
	svc, err := store.New(ctx, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: template store: %w", err)
	}

	orchOpts := []orchestrator.Option{orchestrator.WithStore(svc), orchestrator.WithLogger(logger)}
	if cfg.Theme.Manifest != "" {
		manifest, err := LoadManifest(cfg.Theme.Manifest)
		if err != nil {
			return nil, err
		}
		name := cfg.Theme.Name
		if name == "" {
			name = manifest.Name
		}
		orchOpts = append(orchOpts, orchestrator.WithThemeSelector(render.NewStaticSelector(name, cfg.Theme.Variant, manifest)))
	}
	if cfg.Presets != "" {
		preset, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(cfg.Presets)), filepath.Base(cfg.Presets))
		if err != nil {
			return nil, fmt.Errorf("app: presets: %w", err)
		}
		orchOpts = append(orchOpts, orchestrator.WithTransformer(preset))
	}
	orch := orchestrator.New(orchOpts...)

	var backend Backend
	if cfg.Docs.URL != "" {
		clientOpts := []persistence.Option{persistence.WithLogger(logger)}
		if cfg.Docs.Token != "" {
			clientOpts = append(clientOpts, persistence.WithHeader("Authorization", "Bearer "+cfg.Docs.Token))
		}
		client, err := persistence.New(ctx, cfg.Docs.URL, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("app: documents api: %w", err)
		}
		backend = client
	} else {
		logger.Info("no documents api configured, keeping documents in memory")
		backend = persistence.NewMemory()
	}

	sessions := session.NewManager(orch,
		session.WithSaver(backend),
		session.WithNotifier(backend),
		session.WithManagerLogger(logger),
		session.WithSessionOptions(session.WithFormatter(orch.Formatter())),
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Store:        svc,
		Orchestrator: orch,
		Sessions:     sessions,
		Backend:      backend,
	}, nil
}

// Server returns the HTTP API for the app.
func (a *App) Server() *httpapi.Server {
	return httpapi.New(a.Orchestrator,
		httpapi.WithSessions(a.Sessions),
		httpapi.WithLogger(a.Logger),
		httpapi.WithBasePath(a.Config.Server.BasePath),
		httpapi.WithMaxBodyBytes(a.Config.Server.MaxBodyBytes),
		httpapi.WithRequestTimeout(a.Config.Server.RequestTimeout),
	)
}

type manifestFile struct {
	Name     string                       `yaml:"name"`
	Version  string                       `yaml:"version"`
	Tokens   map[string]string            `yaml:"tokens"`
	Variants map[string]map[string]string `yaml:"variants"`
}

// LoadManifest reads a YAML (or JSON) theme manifest holding marker tokens
// and per-variant token overrides.
func LoadManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: theme manifest: %w", err)
	}
	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("app: theme manifest %s: %w", path, err)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("app: theme manifest %s: name is required", path)
	}

	manifest := &theme.Manifest{
		Name:    file.Name,
		Version: file.Version,
		Tokens:  file.Tokens,
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(file.Variants))
		for name, tokens := range file.Variants {
			manifest.Variants[name] = theme.Variant{Tokens: tokens}
		}
	}
	return manifest, nil
}
