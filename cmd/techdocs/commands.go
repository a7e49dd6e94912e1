package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kbukum/techdocs/bootstrap"
	apperrors "github.com/kbukum/techdocs/errors"
	"github.com/kbukum/techdocs/publisher"
	"github.com/kbukum/techdocs/version"
)

func newPublishCmd(opts *rootOptions) *cobra.Command {
	var directory, entity string

	cmd := &cobra.Command{
		Use:     "publish",
		Short:   "Upload a generated docs bundle for an entity",
		Example: "techdocs publish --entity default/component/api --directory ./site",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				p := app.Publisher()
				res, err := p.Publish(ctx, directory, entity)
				out := cmd.OutOrStdout()
				if res != nil {
					fmt.Fprintf(out, "published %d file(s) for %s to %s\n", len(res.Files), entity, p.Backend())
				}
				if err != nil {
					for _, path := range apperrors.FailedPaths(err) {
						fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s\n", path)
					}
					return err
				}
				if r, ok := p.(publisher.URLResolver); ok {
					if u, err := r.DocsURL(ctx, entity); err == nil {
						fmt.Fprintf(out, "docs url: %s\n", u)
					}
				}
				return nil
			}, func(app *bootstrap.App) {
				app.OnStart(requireReady(app))
			})
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "./site", "bundle root directory")
	cmd.Flags().StringVarP(&entity, "entity", "e", "", "entity key, e.g. default/component/api")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "fetch <entity> <path>",
		Short:   "Read one published file",
		Example: "techdocs fetch default/component/api index.html -o index.html",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// partial is the temporary output file until it is renamed
			// into place. The stop hook removes it when the fetch failed.
			var partial *os.File
			return runApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".partial-*")
					if err != nil {
						return err
					}
					partial, w = f, f
				}

				rc, err := app.Publisher().Fetch(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				defer rc.Close()
				if _, err := io.Copy(w, rc); err != nil {
					return err
				}
				if partial == nil {
					return nil
				}
				if err := partial.Chmod(0o644); err != nil {
					return err
				}
				if err := partial.Close(); err != nil {
					return err
				}
				if err := os.Rename(partial.Name(), output); err != nil {
					return err
				}
				partial = nil
				return nil
			}, func(app *bootstrap.App) {
				app.OnStop(func(context.Context) error {
					if partial == nil {
						return nil
					}
					partial.Close() //nolint:errcheck,gosec // discarded below
					return os.Remove(partial.Name())
				})
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list <entity>",
		Short:   "List the files published for an entity",
		Example: "techdocs list default/component/api",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				for path, err := range app.Publisher().ListFiles(ctx, args[0]) {
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				return nil
			})
		},
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the configured backend is reachable and writable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, opts, func(ctx context.Context, app *bootstrap.App) error {
				app.DisplaySummary(ctx)
				r := app.Publisher().CheckReadiness(ctx)
				if !r.Ready {
					return fmt.Errorf("%s backend not ready: %s", r.Backend, r.Reason)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s backend ready\n", r.Backend)
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
