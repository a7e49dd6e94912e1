// Command techdocs publishes and serves back generated documentation
// bundles through the configured storage backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/kbukum/techdocs/publisher/gcs"
	_ "github.com/kbukum/techdocs/publisher/local"
	_ "github.com/kbukum/techdocs/publisher/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
