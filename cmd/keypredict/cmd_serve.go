package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/keypredict/internal/cli"
	"github.com/bastiangx/keypredict/internal/logger"
	"github.com/bastiangx/keypredict/pkg/proximity"
	"github.com/bastiangx/keypredict/pkg/server"
	"github.com/bastiangx/keypredict/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve suggestions over MessagePack on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts, err := e.engineOptions(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			lib := e.library()
			defer lib.Close()
			dict, err := lib.Load(e.lang)
			if err != nil {
				log.Warnf("Failed to load %q dictionary, running with the user dictionary only: %v", e.lang, err)
			}

			user := e.openUserDict(ctx)
			defer user.Close(ctx)

			engine := suggest.New(dict, user, opts...)
			srv := server.NewServer(engine, e.cfg.Server,
				server.WithLibrary(lib, e.lang),
				server.WithUserDictionary(user, e.cfg.UserDict.FlushEvery),
			)

			// stdin reads block, so a signal saves learned words and exits.
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigs)
			go func() {
				<-sigs
				if err := user.Close(context.Background()); err != nil {
					log.Errorf("Failed to save user dictionary: %v", err)
				}
				fmt.Fprintf(os.Stderr, "\nExiting...\n")
				os.Exit(0)
			}()

			showStartupInfo(e, engine)
			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("mode", "", "Correction mode: none, basic or full")
	return cmd
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [words...]",
		Short: "Type words and print suggestions -- useful for testing and debugging",
		Long: `query types each word into the engine one key at a time, using the
keyboard layout of the dictionary language for neighboring keys, and
prints the candidates and the word a separator would commit.

Without arguments it reads lines from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts, err := e.engineOptions(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			noFilter, _ := cmd.Flags().GetBool("no-filter")
			learn, _ := cmd.Flags().GetBool("learn")

			lib := e.library()
			defer lib.Close()
			dict, err := lib.Load(e.lang)
			if err != nil {
				return err
			}
			user := e.openUserDict(cmd.Context())
			defer user.Close(context.WithoutCancel(cmd.Context()))

			layout, ok := proximity.ForLanguage(e.lang)
			if !ok {
				log.Warnf("No keyboard layout for %q, taps have no neighbors", e.lang)
			}
			log.Debug("Input info:", "lang", e.lang, "limit", limit, "noFilter", noFilter)

			handler := cli.NewInputHandler(suggest.New(dict, user, opts...), layout, limit, noFilter)
			handler.SetLearn(learn)
			if len(args) > 0 {
				handler.SetIO(strings.NewReader(strings.Join(args, " ")), cmd.OutOrStdout())
			}
			return handler.Start()
		},
	}
	cmd.Flags().String("mode", "", "Correction mode: none, basic or full")
	cmd.Flags().Int("limit", 10, "Number of suggestions to show")
	cmd.Flags().Bool("no-filter", false, "Disable input filtering (DBG only)")
	cmd.Flags().Bool("learn", true, "Accept committed words into the user dictionary")
	return cmd
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(e *env, engine *suggest.Engine) {
	stats := engine.Stats()
	l := logger.New("keypredict")
	l.SetLevel(log.InfoLevel)
	l.Info("ready",
		"version", Version,
		"pid", os.Getpid(),
		"lang", e.lang,
		"mode", engine.Mode(),
		"words", stats["words"],
		"userWords", stats["userWords"],
		"data", e.dataDir,
	)
}
