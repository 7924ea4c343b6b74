package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bastiangx/keypredict/internal/logger"
	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/bastiangx/keypredict/pkg/config"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/suggest"
	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// env is what every command starts from: the merged config and the
// resolved paths.
type env struct {
	cfg        *config.Config
	configPath string
	resolver   *utils.PathResolver
	dataDir    string
	lang       string
}

// loadEnv reads the config and applies the global flags on top of it.
func loadEnv(cmd *cobra.Command) (*env, error) {
	customPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, configPath, err := config.LoadConfigWithPriority(customPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.Log.Level, debug); err != nil {
		log.Warnf("Unknown log level %q, using warn", cfg.Log.Level)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	resolver, err := utils.NewPathResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path resolver: %w", err)
	}

	dataDir := cfg.Dict.Dir
	if flag, _ := cmd.Flags().GetString("data"); flag != "" {
		dataDir = flag
	}
	lang := cfg.Dict.Language
	if flag, _ := cmd.Flags().GetString("lang"); flag != "" {
		lang = flag
	}
	e := &env{
		cfg:        cfg,
		configPath: configPath,
		resolver:   resolver,
		dataDir:    resolver.GetDataDir(dataDir),
		lang:       lang,
	}
	log.Debugf("Using data dir at: %s", e.dataDir)
	return e, nil
}

// library opens the dictionary directory.
func (e *env) library() *dictionary.Library {
	lib := dictionary.NewLibrary(e.dataDir)
	lib.SetLegacy(e.cfg.Dict.Legacy)
	return lib
}

// openUserDict opens the configured user dictionary backend. A backend
// that cannot be opened falls back to memory so typing keeps working.
func (e *env) openUserDict(ctx context.Context) *userdict.Dictionary {
	uc := e.cfg.UserDict
	opts := []userdict.Option{
		userdict.WithInitialFrequency(uc.InitialFrequency),
		userdict.WithPromoteAfter(uc.PromoteAfter),
	}
	path := e.cfg.UserDictPath(e.resolver.GetConfigDir())

	var store userdict.Store
	switch uc.Backend {
	case config.BackendMemory:
		store = userdict.NewMemoryStore()
	case config.BackendSnapshot:
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			log.Warnf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		store = userdict.NewSnapshotStore(path)
	default:
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			log.Warnf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		s, err := userdict.OpenSQLite(ctx, path)
		if err != nil {
			log.Warnf("User dictionary unavailable, learned words will not persist: %v", err)
			store = userdict.NewMemoryStore()
		} else {
			store = s
		}
	}
	log.Debugf("User dictionary: backend=%s path=%s", uc.Backend, path)
	return userdict.Open(ctx, store, opts...)
}

// engineOptions turns the config and an optional --mode flag into engine
// options.
func (e *env) engineOptions(cmd *cobra.Command) ([]suggest.Option, error) {
	opts := []suggest.Option{suggest.WithConfig(e.cfg.Engine)}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		m, err := suggest.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, suggest.WithMode(m))
	}
	return opts, nil
}
