package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	httpAdapter "github.com/aretw0/colloquy/pkg/adapters/http"
	"github.com/aretw0/colloquy/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the colloquy engine as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			fmt.Printf("Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		metrics := observability.NewMetrics(cfg.Metrics.Namespace, nil)
		hooks := observability.Chain(metrics.Hooks(), debugHooks(cmd, logger))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		r, closeStore, err := cli.NewRunner(ctx, cfg, logger, hooks, refTable(cmd))
		if err != nil {
			fmt.Printf("Error initializing colloquy: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		flusherDone := make(chan struct{})
		go func() {
			defer close(flusherDone)
			r.Manager.RunFlusher(ctx, cfg.Store.FlushInterval)
		}()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			events, err := r.Engine.Watch(ctx)
			if err != nil {
				logger.Warn("flow watching disabled", "err", err)
			} else {
				go func() {
					for id := range events {
						logger.Info("Flows changed, reloading", "document", id)
					}
				}()
			}
		}

		srv := &http.Server{
			Addr: cfg.HTTP.Addr,
			Handler: httpAdapter.NewHandler(r,
				httpAdapter.WithMetrics(metrics.Handler()),
				httpAdapter.WithLogger(logging.WithComponent(logger, "http")),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(os.Stdout)
			fmt.Printf("Starting Colloquy Server on %s\n", srv.Addr)
			fmt.Printf("Serving flows from: %s\n", cfg.FlowsDir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			cancel()
			<-flusherDone
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}

			// Stopping the flusher writes the remaining dirty sessions.
			cancel()
			<-flusherDone
			fmt.Println("Colloquy Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("watch", false, "Reload flows when their documents change")
	_ = v.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
}
