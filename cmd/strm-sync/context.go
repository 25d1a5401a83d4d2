package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/config"
	"github.com/snapetech/strmsync/internal/history"
	"github.com/snapetech/strmsync/internal/httpclient"
	"github.com/snapetech/strmsync/internal/indexer"
	"github.com/snapetech/strmsync/internal/logging"
	"github.com/snapetech/strmsync/internal/metrics"
	"github.com/snapetech/strmsync/internal/provider"
	"github.com/snapetech/strmsync/internal/selection"
	"github.com/snapetech/strmsync/internal/session"
	"github.com/snapetech/strmsync/internal/state"
	"github.com/snapetech/strmsync/internal/vault"
)

type globalFlags struct {
	config   string
	envFile  string
	provider string
}

// appContext is the per-process wiring shared by every command: configuration,
// logger, persisted state and the objects built from it.
type appContext struct {
	flags *globalFlags

	once sync.Once
	err  error

	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	store      *state.Store
	state      state.AppState
	vault      vault.Vault
	registry   *provider.Registry
	selection  *selection.State
}

func newAppContext(flags *globalFlags) *appContext {
	return &appContext{flags: flags}
}

func (a *appContext) load(stderr io.Writer) error {
	a.once.Do(func() {
		a.err = a.init(stderr)
	})
	return a.err
}

func (a *appContext) init(stderr io.Writer) error {
	if p := strings.TrimSpace(a.flags.envFile); p != "" {
		if err := config.LoadEnvFile(p); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	cfg, used, err := config.Load(strings.TrimSpace(a.flags.config))
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr})
	if err != nil {
		return err
	}
	a.cfg, a.configPath, a.logger = cfg, used, logger

	a.store = state.NewStore(cfg.StatePath)
	st, err := a.store.Load()
	if err != nil {
		logger.Warn("state file unreadable; starting from defaults",
			zap.String("path", cfg.StatePath), zap.Error(err))
	}
	a.state = st
	a.vault = vault.Open(cfg.VaultDir, logger.Named("vault"))
	a.registry = provider.NewRegistry(st.Providers, a.vault, logger.Named("provider"))
	a.selection = st.Selection()
	return nil
}

func (a *appContext) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// activeProvider is the --provider flag, else the last used provider, else the
// only configured provider.
func (a *appContext) activeProvider() string {
	if p := strings.TrimSpace(a.flags.provider); p != "" {
		return p
	}
	if a.state.LastProvider != "" {
		return a.state.LastProvider
	}
	if names := a.registry.Names(); len(names) == 1 {
		return names[0]
	}
	return ""
}

// save persists providers, selection and preferences.
func (a *appContext) save() error {
	a.state.Providers = a.registry.List()
	a.state.SetSelection(a.selection)
	if err := a.store.Save(a.state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (a *appContext) newSession() *session.Session {
	runner := session.NewRunner(32, a.logger.Named("runner"))
	return session.New(a.registry, a.selection, a.activeProvider(), runner, a.logger.Named("session"))
}

func (a *appContext) catalogClient(creds provider.Credentials) (*indexer.Client, error) {
	hc, err := httpclient.New(httpclient.Options{
		Timeout:            a.cfg.RequestTimeoutDuration(),
		UserAgent:          a.cfg.UserAgent,
		InsecureSkipVerify: a.cfg.InsecureTLS,
		ProxyURL:           a.cfg.ProxyURL,
		Decompress:         true,
	})
	if err != nil {
		return nil, err
	}
	return indexer.New(creds,
		indexer.WithHTTPClient(hc),
		indexer.WithRateLimit(a.cfg.RequestsPerSecond),
		indexer.WithLogger(a.logger.Named("indexer")),
	)
}

var errNoCatalog = errors.New("no cached catalog; run `strm-sync fetch` first")

func (a *appContext) loadCatalog() (catalog.Snapshot, error) {
	cat := catalog.New()
	if err := cat.Load(a.cfg.CatalogCachePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return catalog.Snapshot{}, errNoCatalog
		}
		return catalog.Snapshot{}, fmt.Errorf("load catalog cache: %w", err)
	}
	return cat.Snapshot(), nil
}

// recorders opens the batch sinks. The returned func closes them.
func (a *appContext) recorders(ctx context.Context) ([]session.BatchRecorder, func()) {
	recs := []session.BatchRecorder{metrics.New(a.cfg.MetricsTextfile)}
	closeFn := func() {}
	if a.cfg.HistoryDB != "" {
		hist, err := history.Open(ctx, a.cfg.HistoryDB)
		if err != nil {
			a.logger.Warn("batch history unavailable", zap.String("path", a.cfg.HistoryDB), zap.Error(err))
		} else {
			recs = append(recs, hist)
			closeFn = func() { _ = hist.Close() }
		}
	}
	return recs, closeFn
}
