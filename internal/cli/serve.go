package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cristianadrielbraun/qrbrand/internal/config"
	"github.com/cristianadrielbraun/qrbrand/internal/handlers"
	"github.com/cristianadrielbraun/qrbrand/internal/qr"
	"github.com/cristianadrielbraun/qrbrand/internal/service"
)

const shutdownTimeout = 10 * time.Second

func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Settings come from defaults, the optional --config TOML file and the
environment (HOST, PORT, BASE_URL, QR_SIZE, QR_BRANDING_LOGO, QR_ENCODER,
CACHE_DIR, CACHE_TTL, REDIS_URL), in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	return cmd
}

// buildService constructs the engine, cache and service from cfg.
func (c *CLI) buildService(ctx context.Context, cfg *config.Config) (*service.QRService, error) {
	enc, err := encoderFor(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	gen, err := qr.NewGenerator(cfg.QRSize, cfg.LogoPath, qr.WithEncoder(enc), qr.WithLogger(c.Logger))
	if err != nil {
		return nil, fmt.Errorf("build qr generator: %w", err)
	}
	store, err := c.openCache(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	c.Logger.Info("qr generator ready", "size", gen.Size(), "logo", gen.HasLogo(), "encoder", cfg.Encoder)
	return service.NewQRService(gen, cfg.BaseURL,
		service.WithCache(store, cfg.CacheTTL),
		service.WithLogger(c.Logger),
	), nil
}

func (c *CLI) serve(ctx context.Context, cfg *config.Config) error {
	svc, err := c.buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.New(svc, c.Logger), c.Logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("qrbrand listening", "addr", srv.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
