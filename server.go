package dayview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-barry/dayview/core"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 10 * time.Second

type RuntimeConfig struct {
	Env        string
	Port       int
	ConfigPath string
}

// App is one assembled server. The outbound client is created by BuildServer
// and released by Serve once in-flight requests have drained.
type App struct {
	Env      string
	Addr     string
	Config   core.Config
	Settings *core.Settings
	Client   *core.Client
	Logger   *slog.Logger
	Metrics  *core.Metrics
	Reloader core.Reloader
	Handler  http.Handler
}

var (
	Listen = net.Listen
	Exit   = os.Exit
)

var Start = func(cfg RuntimeConfig) {
	fmt.Println("Starting dayview in", cfg.Env, "mode...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "❌ Server failed:", err)
		Exit(1)
	}
}

func Run(ctx context.Context, cfg RuntimeConfig) error {
	app, err := BuildServer(cfg)
	if err != nil {
		return err
	}

	ln, err := Listen("tcp", app.Addr)
	if err != nil {
		app.Client.Close()
		return err
	}

	fmt.Printf("✅ dayview running at http://localhost:%d\n", cfg.Port)
	return app.Serve(ctx, ln)
}

func BuildServer(cfg RuntimeConfig) (*App, error) {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = core.ConfigFile
	}
	config := core.LoadConfig(configPath)

	settings, err := core.LoadSettings(config.EnvFile)
	if err != nil {
		return nil, err
	}

	app := &App{
		Env:      cfg.Env,
		Addr:     fmt.Sprintf(":%d", cfg.Port),
		Config:   config,
		Settings: settings,
		Logger:   core.NewLogger(cfg.Env, config, os.Stderr),
		Metrics:  core.NewMetrics(),
	}
	app.Client = core.NewClient(config.UpstreamTimeout, app.Metrics)

	mux := http.NewServeMux()

	if cfg.Env == "dev" {
		setupDevStaticRoutes(mux, config.PublicDir)
		app.Reloader = core.NewReloader(app.Logger)
		mux.HandleFunc("GET "+core.ReloadPath, app.Reloader.Handler)
	} else {
		mux.Handle("GET /static/", makeStaticHandler(config.PublicDir, filepath.Join(config.OutputDir, "static")))
		setupProdStaticRoutes(mux, config.PublicDir)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "ok")
	})
	mux.Handle("GET /metrics", app.Metrics.Handler())

	pages := &core.Pages{
		Client:   app.Client,
		Settings: settings,
		Renderer: core.NewRenderer(cfg.Env, config),
		Logger:   app.Logger,
		Metrics:  app.Metrics,
	}
	pages.Register(mux)

	app.Handler = core.LogRequests(app.Logger, mux)
	return app, nil
}

// Serve blocks until ctx is done or the listener fails, then drains
// in-flight requests and closes the shared client exactly once.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}

	defer a.Client.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.Reloader != nil {
		g.Go(func() error {
			dirs := []string{a.Config.ViewsDir, a.Config.PublicDir}
			if err := core.Watch(gctx, a.Logger, dirs, a.Reloader.BroadcastReload); err != nil {
				a.Logger.Warn("live reload disabled", "err", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")

		if a.Reloader != nil {
			a.Reloader.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupDevStaticRoutes(mux *http.ServeMux, publicDir string) {
	mux.Handle("GET /static/", staticHandler(publicDir, "", "no-store"))

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, filepath.Join(publicDir, "favicon.ico"))
	})

	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		serveRobots(w, r, publicDir)
	})
}

func setupProdStaticRoutes(mux *http.ServeMux, publicDir string) {
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", immutableCache)
		http.ServeFile(w, r, filepath.Join(publicDir, "favicon.ico"))
	})

	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		serveRobots(w, r, publicDir)
	})
}

func serveRobots(w http.ResponseWriter, r *http.Request, publicDir string) {
	path := filepath.Join(publicDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		http.ServeFile(w, r, path)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "User-agent: *\nDisallow:\n")
}

const immutableCache = "public, max-age=31536000, immutable"

func makeStaticHandler(publicDir, cacheStaticDir string) http.Handler {
	return staticHandler(publicDir, cacheStaticDir, immutableCache)
}

// staticHandler prefers a gzipped cache copy, then the plain cache copy
// (minified assets), then the public directory. Directories are never
// listed. An empty cacheStaticDir skips the cache.
func staticHandler(publicDir, cacheStaticDir, cacheControl string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/static/")
		if trimmed == "" {
			http.NotFound(w, r)
			return
		}
		if !filepath.IsLocal(filepath.FromSlash(trimmed)) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		if cacheStaticDir != "" {
			cachedFile := filepath.Join(cacheStaticDir, trimmed)

			if acceptsGzip(r) && isFile(cachedFile+".gz") {
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Set("Vary", "Accept-Encoding")
				w.Header().Set("Content-Type", detectMimeType(cachedFile))
				w.Header().Set("Cache-Control", cacheControl)
				http.ServeFile(w, r, cachedFile+".gz")
				return
			}

			if isFile(cachedFile) {
				serveFileWithHeaders(w, r, cachedFile, cacheControl)
				return
			}
		}

		publicFile := filepath.Join(publicDir, trimmed)
		if isFile(publicFile) {
			serveFileWithHeaders(w, r, publicFile, cacheControl)
			return
		}

		http.NotFound(w, r)
	})
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, path, cacheControl string) {
	w.Header().Set("Content-Type", detectMimeType(path))
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, path)
}

func detectMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".ico":
		return "image/x-icon"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
