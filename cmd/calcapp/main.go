// calcapp serves the calculator widgets over the Model Context Protocol,
// either on an SSE endpoint (the default) or over stdio.
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

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"
	"github.com/spf13/cobra"

	"github.com/widgetforge/calcapp/server"
	"github.com/widgetforge/calcapp/widget"
)

// set via ldflags on release builds
var version = "dev"

var flags struct {
	port         string
	widgetDomain string
	baseURL      string
	assetsDir    string
	stdio        bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	// Local development keeps PORT and WIDGET_DOMAIN in a .env file.
	_ = godotenv.Load()

	cmd := &cobra.Command{
		Use:           "calcapp",
		Short:         "Calculator widgets served over the Model Context Protocol",
		Version:       version,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.StringVar(&flags.port, "port", osenv.Value("PORT", "3000"), "listen port (environment: PORT)")
	f.StringVar(&flags.widgetDomain, "widget-domain", osenv.Value("WIDGET_DOMAIN", "localhost:3000"),
		"externally reachable origin for widget bundles (environment: WIDGET_DOMAIN)")
	f.StringVar(&flags.baseURL, "base-url", osenv.Value("BASE_URL", ""),
		"base URL for the message endpoint handed to SSE clients (environment: BASE_URL)")
	f.StringVar(&flags.assetsDir, "assets", osenv.Value("ASSETS_DIR", "assets"),
		"directory with built widget bundles (environment: ASSETS_DIR)")
	f.BoolVar(&flags.stdio, "stdio", false, "serve over stdin/stdout instead of SSE")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	reg := widget.NewRegistry(flags.assetsDir, flags.widgetDomain)
	catalog := widget.NewCatalog(reg)

	newServer := func() (*server.MCPServer, error) {
		srv := server.NewMCPServer("calcapp", version)
		for _, w := range reg.All() {
			if err := srv.AddTool(catalog.Tool(w), catalog.Handler(w)); err != nil {
				return nil, err
			}
			srv.AddResource(catalog.Resource(w), catalog.ResourceHandler(w))
			srv.AddResourceTemplate(catalog.ResourceTemplate(w))
		}
		return srv, nil
	}

	if flags.stdio {
		srv, err := newServer()
		if err != nil {
			return err
		}
		return server.ServeStdio(srv)
	}

	// Fail fast on a broken catalog instead of surfacing it on the first
	// connection.
	if _, err := newServer(); err != nil {
		return fmt.Errorf("invalid tool catalog: %w", err)
	}

	baseURL := flags.baseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + flags.port
	}

	sse := server.NewSSEServer(newServer,
		server.WithBaseURL(baseURL),
		server.WithAssetsDir(flags.assetsDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + flags.port
	log.Info("starting calculator app",
		"addr", addr, "base_url", baseURL, "widget_domain", flags.widgetDomain)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sse.Shutdown(shutdownCtx)
	}
}
