package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/techdocs/bootstrap"
	"github.com/kbukum/techdocs/config"
)

type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "techdocs",
		Short:        "Publish and fetch TechDocs bundles",
		Long:         "techdocs uploads generated documentation sites to the configured publisher backend (local, googleGcs or awsS3) and reads them back.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to config.yml (searched in standard locations when empty)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to a .env file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(
		newPublishCmd(opts),
		newFetchCmd(opts),
		newListCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// runApp loads the configuration and runs task inside the application
// lifecycle. setup functions register hooks before the app starts.
// Diagnostics go to the command's stderr.
func runApp(cmd *cobra.Command, opts *rootOptions, task func(ctx context.Context, app *bootstrap.App) error, setup ...func(app *bootstrap.App)) error {
	var loaderOpts []config.LoaderOption
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}
	cfg, err := config.Load(opts.configFile, loaderOpts...)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	for _, fn := range setup {
		fn(app)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return task(ctx, app)
	})
}

// requireReady is a start hook that stops the command before the task runs
// when the backend cannot be written to.
func requireReady(app *bootstrap.App) bootstrap.Hook {
	return func(ctx context.Context) error {
		r := app.Publisher().CheckReadiness(ctx)
		if !r.Ready {
			return fmt.Errorf("%s backend not ready: %s", r.Backend, r.Reason)
		}
		return nil
	}
}
