package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/shekelsync/shekelsync/internal/accountmap"
	"github.com/shekelsync/shekelsync/internal/analyzer"
	"github.com/shekelsync/shekelsync/internal/config"
	"github.com/shekelsync/shekelsync/internal/importer"
	"github.com/shekelsync/shekelsync/internal/ledger"
	"github.com/shekelsync/shekelsync/internal/logger"
)

// env is the state a command needs once config is loaded.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	dataDir string
	dbPath  string
	store   *accountmap.SQLiteStore
}

// loadEnv reads the config and builds the logger. A missing config file is
// only an error when --config was given explicitly. Relative storage paths
// resolve against the config file's directory.
func loadEnv(cmd *cobra.Command, flags *globalFlags) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	default:
		return nil, err
	}

	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	log, err := logger.Configure(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	base, err := filepath.Abs(filepath.Dir(flags.configPath))
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	e := &env{
		cfg:     cfg,
		log:     log,
		dataDir: resolve(base, cfg.Storage.DataDir),
		dbPath:  resolve(base, cfg.Storage.DBPath),
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return e, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// openStore opens the sqlite mapping store once per command.
func (e *env) openStore() (*accountmap.SQLiteStore, error) {
	if e.store != nil {
		return e.store, nil
	}
	s, err := accountmap.Open(e.dbPath)
	if err != nil {
		return nil, err
	}
	e.store = s
	return s, nil
}

func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.Warn().Err(err).Msg("closing account mapping store")
		}
	}
}

func (e *env) analyzer() (*analyzer.Analyzer, error) {
	store, err := e.openStore()
	if err != nil {
		return nil, err
	}
	return analyzer.New(importer.DefaultRegistry(), store), nil
}

// oauth returns the OAuth token source, or ErrNotConfigured when no client
// is configured.
func (e *env) oauth() (*ledger.OAuthTokens, error) {
	lc := e.cfg.Ledger
	if lc.ClientID == "" {
		return nil, fmt.Errorf("%w: ledger.client_id is not set", ledger.ErrNotConfigured)
	}
	store, err := e.openStore()
	if err != nil {
		return nil, err
	}
	oc := &oauth2.Config{
		ClientID:     lc.ClientID,
		ClientSecret: lc.ClientSecret,
		RedirectURL:  lc.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  lc.AuthURL,
			TokenURL: lc.TokenURL,
		},
	}
	return ledger.NewOAuthTokens(oc, store), nil
}

func (e *env) tokens() (ledger.TokenSource, error) {
	if e.cfg.Ledger.AccessToken != "" {
		return ledger.StaticToken(e.cfg.Ledger.AccessToken), nil
	}
	return e.oauth()
}

func (e *env) ledgerClient() (*ledger.Client, error) {
	tokens, err := e.tokens()
	if err != nil {
		return nil, err
	}
	return ledger.NewClient(ledger.ClientConfig{
		BaseURL:   e.cfg.Ledger.BaseURL,
		BudgetID:  e.cfg.Ledger.BudgetID,
		BatchSize: e.cfg.Ledger.BatchSize,
	}, tokens)
}

// statementFiles reads the named files, or every file waiting in the import
// dir when none are named. fromImportDir reports which case applied.
func (e *env) statementFiles(args []string) (files []analyzer.File, fromImportDir bool, err error) {
	if len(args) > 0 {
		for _, p := range args {
			f, err := analyzer.ReadFile(p)
			if err != nil {
				return nil, false, err
			}
			files = append(files, f)
		}
		return files, false, nil
	}

	infos, err := importer.Scan(e.dataDir)
	if err != nil {
		return nil, false, err
	}
	for _, fi := range infos {
		f, err := analyzer.ReadFile(fi.Path)
		if err != nil {
			return nil, false, err
		}
		files = append(files, f)
	}
	return files, true, nil
}
