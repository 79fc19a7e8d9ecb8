package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/neurobin-systems/neurobin/internal/classify"
	"github.com/neurobin-systems/neurobin/internal/config"
	"github.com/neurobin-systems/neurobin/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var configPath string
	var providerName string
	var model string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the waste classification web server",
		Long: `Starts the NeuroBin web interface on the specified port.

The interface lets users upload a waste image or capture one from a
camera, classifies it into one of six categories using a vision LLM,
and shows the optimal disposal method.`,
		Example: `  # Start server on default port 8888
  neurobin serve

  # Start server on custom port with a local Ollama model
  neurobin serve --port 3000 --provider ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if providerName != "" {
				cfg.Provider = providerName
			}
			if model != "" {
				cfg.Model = model
			}

			provider, err := classify.NewProvider(cfg.Provider)
			if err != nil {
				return err
			}
			classifier := classify.NewService(provider, cfg.Provider, cfg.Model)

			// Server deployments have no capture device; camera start
			// requests fail with a camera access error.
			handler := handlers.New(cfg, classifier, nil)
			defer handler.Store().Close()

			mux := http.NewServeMux()
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/api/categories", handler.HandleCategories)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("NeuroBin interface available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default 8888)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&providerName, "provider", "", "LLM provider (gemini, openai, or ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")

	return cmd
}
