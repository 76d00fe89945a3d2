// qrfusion serves the QR Fusion Studio configurator and exports styled QR
// codes from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cristianadrielbraun/qrfusion/internal/config"
	"github.com/cristianadrielbraun/qrfusion/internal/handlers"
	"github.com/cristianadrielbraun/qrfusion/internal/logger"
	"github.com/cristianadrielbraun/qrfusion/internal/session"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var cfgFile string

func main() {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:           "qrfusion",
		Short:         "QR Fusion Studio",
		Long:          "Design styled QR codes with colors, a frame and a logo, and export them as PNG.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml if present)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web configurator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	serveCmd.Flags().String("addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().Bool("debug", false, "enable debug logging")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("settings.debug", serveCmd.Flags().Lookup("debug"))

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "qrfusion %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
		},
	}

	rootCmd.AddCommand(serveCmd, newExportCmd(), newPreviewCmd(), versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Settings.Debug,
		LogToFile: cfg.Settings.LogToFile,
		LogsDir:   cfg.Settings.LogsDir,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.Log
	defer func() { _ = log.Sync() }()

	store := session.NewStore(cfg.Session.TTL, logger.MustNamed("session").SugaredLogger)
	defer store.Close()

	gin.SetMode(gin.ReleaseMode)
	if cfg.Settings.Debug {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(handlers.RequestLogger(logger.MustNamed("http").SugaredLogger))
	r.Use(gin.Recovery())
	handlers.New(store, cfg, logger.MustNamed("handlers").SugaredLogger).Register(r)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           gzhttp.GzipHandler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("qrfusion listening", "addr", cfg.Server.Addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
