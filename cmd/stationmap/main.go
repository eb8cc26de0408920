package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/stationmap/internal/config"
	"github.com/bbernstein/stationmap/internal/gbfs"
	"github.com/bbernstein/stationmap/internal/handler"
	"github.com/bbernstein/stationmap/internal/publish"
	"github.com/bbernstein/stationmap/internal/render"
	"github.com/bbernstein/stationmap/pkg/http/client"
)

type pagePublisher interface {
	Publish(ctx context.Context, page []byte) error
}

// Allow mocking of the S3 publisher in tests
var newPublisher = func(ctx context.Context, cfg *config.PublishConfig) (pagePublisher, error) {
	s3Client, err := publish.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	return publish.NewS3Publisher(s3Client, cfg), nil
}

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Error().Err(err).Msg("Station map generation failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info().
		Str("env", cfg.Environment).
		Str("info_url", cfg.InformationURL).
		Str("status_url", cfg.StatusURL).
		Str("output", cfg.OutputPath).
		Msg("Generating station map")

	httpClient := client.New(client.Options{
		Timeout: cfg.HTTPTimeout,
	})
	feedClient := gbfs.NewClient(httpClient, gbfs.Options{
		InformationURL: cfg.InformationURL,
		StatusURL:      cfg.StatusURL,
	})

	renderer, err := render.NewRenderer(cfg.Map)
	if err != nil {
		return err
	}
	mapHandler := handler.NewMapHandler(feedClient, renderer)

	var page bytes.Buffer
	if _, err := mapHandler.Render(ctx, &page); err != nil {
		return err
	}

	if err := writeOutput(cfg.OutputPath, page.Bytes(), stdout); err != nil {
		return err
	}

	if cfg.Publish != nil {
		publisher, err := newPublisher(ctx, cfg.Publish)
		if err != nil {
			return err
		}
		if err := publisher.Publish(ctx, page.Bytes()); err != nil {
			return fmt.Errorf("publishing map: %w", err)
		}
	}

	return nil
}

// writeOutput writes the page to stdout or, via a temp file and rename, to
// path so readers never see a partial page.
func writeOutput(path string, page []byte, stdout io.Writer) error {
	if path == config.StdoutPath {
		if _, err := stdout.Write(page); err != nil {
			return fmt.Errorf("writing page to stdout: %w", err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(page); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	log.Info().Str("path", path).Int("bytes", len(page)).Msg("Wrote station map")
	return nil
}
