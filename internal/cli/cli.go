// Package cli implements the qrbrand command-line interface.
//
// The serve command runs the HTTP API; generate renders a single code to a
// file. All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrbrand/internal/cache"
	"github.com/cristianadrielbraun/qrbrand/internal/config"
	"github.com/cristianadrielbraun/qrbrand/internal/qr"
)

const appName = "qrbrand"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Version is set at build time via ldflags.
var Version = "dev"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "qrbrand renders branded QR codes",
		Long:         `qrbrand renders QR codes at error correction level H with an optional brand logo in the centre, as a CLI or an HTTP service.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.generateCommand())
	return root
}

// encoderFor maps a configured encoder name to an implementation.
func encoderFor(name string) (qr.MatrixEncoder, error) {
	switch name {
	case "", config.EncoderYeqown:
		return qr.YeqownEncoder{}, nil
	case config.EncoderZXing:
		return qr.ZXingEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown encoder %q", name)
	}
}

// openCache picks the cache backend: Redis, then a directory, else none.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch {
	case cfg.RedisURL != "":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using redis cache")
		return rc, nil
	case cfg.CacheDir != "":
		fc, err := cache.NewFileCache(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using file cache", "dir", cfg.CacheDir)
		return fc, nil
	default:
		return cache.NewNullCache(), nil
	}
}
