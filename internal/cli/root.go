// Package cli is the mantella command line: a thin cobra layer over
// session.Service.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/johanforsgren/mantella/internal/cache"
	"github.com/johanforsgren/mantella/internal/config"
	"github.com/johanforsgren/mantella/internal/logger"
	"github.com/johanforsgren/mantella/internal/provider/nextcloud"
	"github.com/johanforsgren/mantella/internal/session"
	"github.com/johanforsgren/mantella/internal/storage"
)

// app is built once per invocation, after flags and config are parsed.
type app struct {
	cfg config.Config
	svc *session.Service
}

func newApp(cfg config.Config) (*app, error) {
	if err := logger.Init(cfg.LogPath, cfg.Verbose); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: "+err.Error()))
	}

	store, err := storage.NewLocalRepositoryAt(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	pages := cache.NewPageCache()
	provider := nextcloud.NewProvider(store, pages, nextcloud.NewAuthenticatedClient(store, cfg.Timeout), cfg.UserLimit)
	auth := nextcloud.NewAuthClient(nextcloud.NewHTTPClient(cfg.Timeout))

	return &app{
		cfg: cfg,
		svc: session.New(store, auth, provider, pages, cfg.Timeout),
	}, nil
}

func (a *app) close() {
	a.svc.Close()
	_ = logger.Close()
}

// NewRootCmd builds the full command tree. Each call returns independent
// commands sharing nothing but viper's global configuration.
func NewRootCmd() *cobra.Command {
	var current *app

	root := &cobra.Command{
		Use:           "mantella",
		Short:         "Read and edit Nextcloud Collectives from the terminal",
		Long:          "Mantella signs in to a Nextcloud server and lists, reads, writes, creates and shares collectives and their pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			if err := config.Setup(cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			current, err = newApp(cfg)
			return err
		},
	}

	// finish runs after every command, including failed ones, which cobra's
	// post-run hooks skip.
	finish := func(cmd *cobra.Command) {
		if current == nil {
			return
		}
		if current.cfg.Verbose {
			printLogs(cmd.ErrOrStderr())
		}
		current.close()
		current = nil
	}

	root.PersistentFlags().String("config", "", "config file (default .mantella.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "print the session log after each command")
	root.PersistentFlags().Duration("timeout", nextcloud.DefaultTimeout, "per-request timeout")
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	svc := func() *session.Service { return current.svc }
	cfg := func() config.Config { return current.cfg }

	root.AddCommand(
		newLoginCmd(svc, cfg),
		newLogoutCmd(svc),
		newWhoamiCmd(svc),
		newCollectivesCmd(svc),
		newPagesCmd(svc),
		newCatCmd(svc),
		newPutCmd(svc),
		newAddPageCmd(svc),
		newRmCmd(svc),
		newPeopleCmd(svc),
		newCreateCmd(svc),
	)
	for _, sub := range root.Commands() {
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			defer finish(cmd)
			return run(cmd, args)
		}
	}
	return root
}

func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
