package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"flag"

	"github.com/rs/zerolog"

	"github.com/beeper/slunk-harvester/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the harvester config file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	cfg = cfg.WithDefaults()

	windows, err := newWindowSource()
	if err != nil {
		log.Fatal().Err(err).Msg("construct window source")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(ctx, cfg, windows, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize daemon")
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close daemon")
		}
	}()

	log.Info().Str("schedule", cfg.Schedule.Cron).Msg("slunkd starting")
	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("daemon exited")
	}
}

// expandPath resolves a leading "~" to the user's home directory, the way
// the example config's paths (under <AppSupport>) are written. An empty
// path is returned unchanged; callers that need a default for "" apply it
// themselves.
func expandPath(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
