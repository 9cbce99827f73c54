// Command traceview-demo runs a small host application with an
// embedded telemetry console: a couple of instrumented demo endpoints,
// a background traffic generator, and the console API mounted under
// /tracing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/traceview/traceview"
	"github.com/traceview/traceview/api"
	"github.com/traceview/traceview/event"
)

func main() {
	// Command-line flags
	port := flag.Int("port", 8088, "HTTP port to listen on")
	capacity := flag.Int("capacity", 0, "Event store capacity (0 = env/default)")
	webDir := flag.String("web", "", "Optional directory with static dashboard files")
	flag.Parse()

	opts, err := traceview.OptionsFromEnv()
	if err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	if *capacity > 0 {
		opts.Capacity = *capacity
	}

	console := traceview.New(opts)
	defer console.Close()
	log.Printf("Console initialized. Capacity: %d events", opts.Capacity)

	logger := slog.New(traceview.NewHandler(console, traceview.HandlerOptions{
		Origin: "demo",
	}))

	mux := http.NewServeMux()
	mux.Handle("/tracing/", http.StripPrefix("/tracing", api.NewHandler(console)))
	mux.HandleFunc("/api/users", handleUsers(logger))
	mux.HandleFunc("/api/orders", handleOrders(logger))

	// Static file serving for the dashboard, if provided
	if *webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(*webDir)))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: mux,
	}

	// Background traffic so the console has something to show
	stop := make(chan struct{})
	go generateTraffic(logger, stop)

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		log.Printf("Console API available at http://localhost%s/tracing/api", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal: %v. Shutting down...", sig)
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("traceview-demo exited gracefully.")
}

func handleUsers(logger *slog.Logger) http.HandlerFunc {
	users := logger.WithGroup("users")
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := traceview.WithScope(r.Context(), "handle_users", event.Fields{
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
		})
		users.InfoContext(ctx, "listing users", "count", 3)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]string{"ada", "grace", "edsger"})
	}
}

func handleOrders(logger *slog.Logger) http.HandlerFunc {
	orders := logger.WithGroup("orders")
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := traceview.WithScope(r.Context(), "handle_orders", event.Fields{
			{Key: "method", Value: r.Method},
		})
		id := rand.Intn(10_000)
		orders.InfoContext(ctx, "order received", "order_id", id)
		if id%7 == 0 {
			orders.WarnContext(ctx, "order flagged for review", "order_id", id)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"order_id": id})
	}
}

// generateTraffic emits a steady trickle of synthetic events across a
// few origins and levels.
func generateTraffic(logger *slog.Logger, stop <-chan struct{}) {
	db := logger.WithGroup("db")
	cache := logger.WithGroup("cache")

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		switch i % 5 {
		case 0:
			db.Debug("query executed", "rows", rand.Intn(50), "duration_ms", rand.Intn(20))
		case 1:
			cache.Info("cache hit", "key", fmt.Sprintf("user:%d", rand.Intn(100)))
		case 2:
			cache.Log(context.Background(), traceview.LevelTrace, "cache probe", "shard", i%4)
		case 3:
			db.Warn("slow query", "duration_ms", 100+rand.Intn(400))
		default:
			if rand.Intn(4) == 0 {
				db.Error("connection reset", "retry", true)
			} else {
				logger.Info("heartbeat", "iteration", i)
			}
		}
	}
}
