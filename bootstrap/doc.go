// Package bootstrap runs a techdocs command inside the service lifecycle:
// telemetry setup, publisher component start, ready check, the task itself
// and graceful shutdown on completion or SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := app.Publisher().Publish(ctx, "./site", "default/component/api")
//	    return err
//	})
package bootstrap
