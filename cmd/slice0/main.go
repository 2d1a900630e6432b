// Command slice0 serves the Slice 0 room simulator API, the websocket frame
// stream and the debug pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/slice0/internal/api"
	"github.com/banshee-data/slice0/internal/config"
	"github.com/banshee-data/slice0/internal/timeutil"
	"github.com/banshee-data/slice0/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "Listen address")
	configPath  = flag.String("config", "", "Path to a simulator config JSON file (defaults to built-in values)")
	corsOrigins = flag.String("cors", "", "Comma-separated origins allowed to call the API (empty allows any)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// loadConfig reads path, or returns the built-in defaults when path is empty.
func loadConfig(path string) (*config.SimConfig, error) {
	if path == "" {
		return config.EmptySimConfig(), nil
	}
	return config.LoadSimConfig(path)
}

// splitOrigins parses the -cors flag.
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// newHandler wires the API under /api/ and the debug pages under /debug/.
func newHandler(cfg *config.SimConfig, clock timeutil.Clock, origins []string) http.Handler {
	srv := api.NewServer(cfg, clock)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", srv.ServeMux()))
	srv.AttachAdminRoutes(mux)

	return api.WithCORS(api.LoggingMiddleware(mux), origins)
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *configPath != "" {
		log.Printf("loaded simulator config from %s", *configPath)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:              *listen,
			Handler:           newHandler(cfg, timeutil.RealClock{}, splitOrigins(*corsOrigins)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Printf("slice0 %s listening on %s", version.String(), *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("failed to start server: %v", err)
				os.Exit(1)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		// Open streams do not end on Shutdown; Close drops them.
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
