package main

import (
	"fmt"

	"github.com/nikolayk812/cartstore/internal/config"
	"github.com/nikolayk812/cartstore/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configFile string
	owner      string
	v          *viper.Viper
	app        *app
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "cartctl",
		Short:         "Manage storefront carts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&opts.owner, "owner", "local", "cart owner id")
	flags.String("backend", "", "storage backend: memory, file, redis or postgres")
	flags.String("storage-dir", "", "directory for the file backend")
	flags.String("log-level", "", "log level")
	flags.Bool("log-dev", false, "human readable logs")

	_ = opts.v.BindPFlag("storage.backend", flags.Lookup("backend"))
	_ = opts.v.BindPFlag("storage.dir", flags.Lookup("storage-dir"))
	_ = opts.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("log.development", flags.Lookup("log-dev"))

	cmd.AddCommand(
		newShowCmd(opts),
		newAddCmd(opts),
		newUpdateCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newCouponCmd(opts),
		newCheckoutCmd(opts),
		newServeCmd(opts),
	)

	return cmd, opts
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
	}

	cfg, err := config.Load(o.v)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}

	o.app, err = newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("newApp: %w", err)
	}

	return nil
}

// close runs after Execute so resources are released on command failure too.
func (o *rootOptions) close() error {
	if o.app == nil {
		return nil
	}
	_ = o.app.logger.Sync()
	return o.app.Close()
}
