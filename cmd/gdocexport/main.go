package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/gdocexport/internal/app"
	"github.com/jgivc/gdocexport/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load config: %s\n", err)
		os.Exit(app.ExitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.New(cfg).Run(ctx)
	stop()

	os.Exit(code)
}
