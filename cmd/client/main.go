package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/offnote/notesync/internal/client/cli"
	"github.com/offnote/notesync/internal/client/config"
	"github.com/offnote/notesync/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	// Log to stderr so the REPL on stdout stays readable.
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
