package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/sameerk147/repurpose/internal/cache"
	"github.com/sameerk147/repurpose/internal/eventlog"
	"github.com/sameerk147/repurpose/internal/mine"
	"github.com/sameerk147/repurpose/internal/model"
	"github.com/sameerk147/repurpose/internal/pipeline"
	"github.com/sameerk147/repurpose/internal/reason"
	"github.com/sameerk147/repurpose/internal/store"
	"github.com/sameerk147/repurpose/internal/validate"
)

// app holds the wired components every command works through. Construction
// is cheap; the LLM provider is built lazily since only reasoning needs it.
type app struct {
	cfg   *model.Config
	log   *eventlog.Logger
	store *store.Store
	cache cache.Cache
}

// loadConfig layers the config file and REPURPOSE_* environment over the
// built-in defaults, then applies flag overrides and env-only secrets.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if workspace != "" {
		cfg.Workspace = workspace
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	}

	// Secrets come from the environment only, never the config file.
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.Provider == "ollama" {
		cfg.LLM.BaseURL = baseURL
	}
	if email := os.Getenv("ENTREZ_EMAIL"); email != "" {
		cfg.Mining.Email = email
	}

	return cfg, nil
}

// newApp loads configuration and wires the logger, artifact store, and
// response cache.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := eventlog.New(filepath.Join(cfg.Workspace, "logs"))
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = filepath.Join(cfg.Workspace, ".cache")
		}
		responseCache = cache.NewLayered(cfg.Cache.TTL, dir, cfg.Cache.TTL)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: store.New(cfg.Workspace, log),
		cache: responseCache,
	}, nil
}

func (a *app) close() {
	_ = a.log.Close()
}

func (a *app) miner() *mine.Miner {
	client := mine.NewEntrezClient(a.cfg.Mining, a.cfg.HTTP, a.cache, a.cfg.Cache.TTL, a.log)
	return mine.NewMiner(client, a.store, a.cfg.Mining, a.cfg.Query.DefaultTerms, a.log)
}

func (a *app) generator() (*reason.Generator, error) {
	provider, err := reason.NewProvider(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return reason.NewGenerator(provider, a.log), nil
}

func (a *app) validator() *validate.Validator {
	kb := validate.NewUniProtClient(a.cfg.Validation, a.cfg.HTTP, a.cache, a.cfg.Cache.TTL, a.log)
	return validate.NewValidator(kb, a.cfg.Validation, a.log)
}

// coordinator builds the full four-stage pipeline. Configured external
// commands take the place of the in-process stages when present.
func (a *app) coordinator() (*pipeline.Coordinator, error) {
	timeout := a.cfg.Pipeline.StageTimeout
	if timeout <= 0 {
		timeout = model.DefaultConfig().Pipeline.StageTimeout
	}

	var stages []pipeline.Stage
	if len(a.cfg.Pipeline.Commands) > 0 {
		var err error
		stages, err = pipeline.StagesFromCommands(a.cfg.Pipeline.Commands, timeout)
		if err != nil {
			return nil, err
		}
	} else {
		gen, err := a.generator()
		if err != nil {
			return nil, err
		}
		stages = pipeline.DefaultStages(pipeline.Components{
			Store:     a.store,
			Miner:     a.miner(),
			IndexCfg:  a.cfg.Index,
			Generator: gen,
			Validator: a.validator(),
			Log:       a.log,
		}, timeout)
	}

	return pipeline.NewCoordinator(a.store, stages, a.log), nil
}
