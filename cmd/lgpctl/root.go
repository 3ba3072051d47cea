package main

import (
	"github.com/spf13/cobra"

	"lgpkit/internal/config"
	"lgpkit/internal/logging"
	"lgpkit/pkg/lgpkit"
)

type globalFlags struct {
	configFile  string
	store       string
	dbPath      string
	compression string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "lgpctl",
		Short:         "Store, compare and export linear genetic programming results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default is ./lgpctl.yaml)")
	pf.StringVar(&flags.store, "store", "", "store backend: memory|sqlite")
	pf.StringVar(&flags.dbPath, "db-path", "", "sqlite database path")
	pf.StringVar(&flags.compression, "compression", "", "payload compression: lz4|none|s2|zstd")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newInitCmd(flags),
		newImportCmd(flags),
		newListCmd(flags),
		newShowCmd(flags),
		newCompareCmd(flags),
		newExportCmd(flags),
		newDeleteCmd(flags),
	)
	return root
}

// resolveConfig layers flags over the environment over the config file.
func resolveConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	pf := cmd.Flags()
	if pf.Changed("store") {
		cfg.Store = flags.store
	}
	if pf.Changed("db-path") {
		cfg.DBPath = flags.dbPath
	}
	if pf.Changed("compression") {
		cfg.Compression = flags.compression
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openClient returns an initialized client; callers must Close it.
func openClient(cmd *cobra.Command, flags *globalFlags) (*lgpkit.Client, *config.Config, error) {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	logging.SetLogger(logger)

	client, err := lgpkit.New(lgpkit.Options{
		StoreKind:   cfg.Store,
		DBPath:      cfg.DBPath,
		ExportsDir:  cfg.ExportsDir,
		Compression: cfg.Compression,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := client.Init(cmd.Context()); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return client, cfg, nil
}
