package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/gitdriver/internal/config"
	"git.home.luguber.info/inful/gitdriver/internal/gitcli"
	"git.home.luguber.info/inful/gitdriver/internal/journal"
	"git.home.luguber.info/inful/gitdriver/internal/logfields"
	"git.home.luguber.info/inful/gitdriver/internal/maintenance"
	"git.home.luguber.info/inful/gitdriver/internal/retry"
	"git.home.luguber.info/inful/gitdriver/internal/telemetry"
	"git.home.luguber.info/inful/gitdriver/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Version struct{} `cmd:"" help:"Report installed git and git-lfs versions"`

	Sync struct {
		Dir     string   `arg:"" help:"Repository working directory"`
		URL     string   `arg:"" help:"Remote URL to sync from"`
		Ref     string   `help:"Committish to check out after fetching" default:"FETCH_HEAD"`
		Remote  string   `short:"r" help:"Remote name" default:"origin"`
		Depth   int      `short:"d" help:"Shallow fetch depth (0 = full history)"`
		RefSpec []string `help:"Refspecs passed after the remote"`
	} `cmd:"" help:"Initialize if needed, fetch, and check out a ref"`

	Fetch struct {
		Dir     string   `arg:"" help:"Repository working directory"`
		Remote  string   `short:"r" help:"Remote name" default:"origin"`
		Depth   int      `short:"d" help:"Shallow fetch depth (0 = full history)"`
		RefSpec []string `help:"Refspecs passed after the remote"`
	} `cmd:"" help:"Fetch from a remote with bounded retry"`

	Checkout struct {
		Dir string `arg:"" help:"Repository working directory"`
		Ref string `arg:"" help:"Committish to check out"`
	} `cmd:"" help:"Force-checkout a ref"`

	Clean struct {
		Dir string `arg:"" help:"Repository working directory"`
	} `cmd:"" help:"Remove untracked and ignored files"`

	Reset struct {
		Dir string `arg:"" help:"Repository working directory"`
	} `cmd:"" help:"Hard-reset the working tree to HEAD"`

	Gc struct {
		Dir string `arg:"" help:"Repository working directory"`
	} `cmd:"" help:"Run repository garbage collection"`

	Cfg struct {
		Get struct {
			Dir string `arg:"" help:"Repository working directory"`
			Key string `arg:"" help:"Configuration key"`
		} `cmd:"" help:"Read a single configuration value"`
		Set struct {
			Dir   string `arg:"" help:"Repository working directory"`
			Key   string `arg:"" help:"Configuration key"`
			Value string `arg:"" help:"Value to write"`
		} `cmd:"" help:"Write a configuration value"`
	} `cmd:"" name:"config" help:"Read or write repository configuration"`

	RemoteUrl struct {
		Dir    string `arg:"" help:"Repository working directory"`
		Remote string `short:"r" default:"origin"`
	} `cmd:"" name:"remote-url" help:"Print the remote fetch URL if it is a well-formed absolute URL"`

	Daemon struct{} `cmd:"" help:"Run scheduled maintenance with a metrics endpoint"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	config.LoadDotEnv()
	cfg := loadConfig()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, reg, cleanup := buildSinks(cfg)
	defer cleanup()

	session, err := gitcli.Load(runCtx, gitcli.LoadOptions{
		Telemetry:        sinks,
		RetryPolicy:      retry.NewPolicy(cfg.Retry.MinDelayDuration(), cfg.Retry.MaxDelayDuration(), cfg.Retry.MaxAttempts),
		Env:              cfg.Env,
		Quiet:            cfg.Fetch.Quiet,
		DisablePruneTags: cfg.Fetch.DisablePruneTags,
		RequireLFS:       cfg.Fetch.LFS,
		EnforceMinimum:   true,
	})
	if err != nil {
		slog.Error("failed to load git session", logfields.Error(err))
		os.Exit(1)
	}

	switch ctx.Command() {
	case "version":
		reportVersions(session)

	case "sync <dir> <url>":
		runSync(runCtx, cfg, session)

	case "fetch <dir>":
		depth := CLI.Fetch.Depth
		if depth == 0 {
			depth = cfg.Fetch.Depth
		}
		exitWith(session.Fetch(runCtx, CLI.Fetch.Dir, gitcli.FetchOptions{
			Remote:   CLI.Fetch.Remote,
			RefSpecs: CLI.Fetch.RefSpec,
			Depth:    depth,
		}))

	case "checkout <dir> <ref>":
		exitWith(session.Checkout(runCtx, CLI.Checkout.Dir, CLI.Checkout.Ref))

	case "clean <dir>":
		exitWith(session.Clean(runCtx, CLI.Clean.Dir))

	case "reset <dir>":
		exitWith(session.Reset(runCtx, CLI.Reset.Dir))

	case "gc <dir>":
		exitWith(session.GC(runCtx, CLI.Gc.Dir))

	case "config get <dir> <key>":
		value, ok := session.ConfigGet(runCtx, CLI.Cfg.Get.Dir, CLI.Cfg.Get.Key)
		if !ok {
			os.Exit(1)
		}
		fmt.Println(value)

	case "config set <dir> <key> <value>":
		exitWith(session.ConfigSet(runCtx, CLI.Cfg.Set.Dir, CLI.Cfg.Set.Key, CLI.Cfg.Set.Value))

	case "remote-url <dir>":
		url, ok := session.RemoteURL(runCtx, CLI.RemoteUrl.Dir, CLI.RemoteUrl.Remote)
		if !ok {
			slog.Error("remote URL undetermined", logfields.Remote(CLI.RemoteUrl.Remote))
			os.Exit(1)
		}
		fmt.Println(url)

	case "daemon":
		runDaemon(runCtx, cfg, session, reg)

	default:
		slog.Error("unknown command", slog.String("command", ctx.Command()))
		os.Exit(1)
	}
}

// loadConfig reads the configured file; a missing file falls back to an
// empty config so single-shot commands work without one.
func loadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err == nil {
		return cfg
	}
	if stderrors.Is(err, os.ErrNotExist) {
		slog.Debug("no configuration file; using defaults", logfields.Path(CLI.Config))
		return &config.Config{}
	}
	slog.Error("failed to load configuration", logfields.Error(err))
	os.Exit(1)
	return nil
}

// buildSinks assembles the telemetry fan-out from configuration. The
// Prometheus registry is returned so daemon mode can expose it.
func buildSinks(cfg *config.Config) (telemetry.Sink, *prom.Registry, func()) {
	sinks := telemetry.MultiSink{telemetry.LogSink{}}
	cleanup := func() {}

	var reg *prom.Registry
	if cfg.Telemetry.MetricsListen != "" {
		reg = prom.NewRegistry()
		sinks = append(sinks, telemetry.NewPrometheusSink(reg))
	}
	if cfg.Telemetry.JournalPath != "" {
		j, err := journal.Open(cfg.Telemetry.JournalPath)
		if err != nil {
			slog.Warn("operation journal disabled", logfields.Error(err))
		} else {
			sinks = append(sinks, j)
			cleanup = func() { _ = j.Close() }
		}
	}
	return sinks, reg, cleanup
}

// runSync is the full worker flow: ensure the repository exists and points at
// the requested URL, fetch, then check out. Any failing step ends the run with
// that step's exit code.
func runSync(ctx context.Context, cfg *config.Config, session *gitcli.Session) {
	dir := CLI.Sync.Dir
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		must(session.Init(ctx, dir))
	}
	// Writing the key directly is idempotent; remote set-url fails when the
	// remote does not exist yet.
	must(session.ConfigSet(ctx, dir, fmt.Sprintf("remote.%s.url", CLI.Sync.Remote), CLI.Sync.URL))

	if cfg.Fetch.LFS {
		must(session.LFSInstall(ctx, dir))
	}

	depth := CLI.Sync.Depth
	if depth == 0 {
		depth = cfg.Fetch.Depth
	}
	must(session.Fetch(ctx, dir, gitcli.FetchOptions{
		Remote:   CLI.Sync.Remote,
		RefSpecs: CLI.Sync.RefSpec,
		Depth:    depth,
	}))

	if cfg.Fetch.LFS {
		must(session.LFSFetch(ctx, dir, CLI.Sync.Remote, CLI.Sync.Ref))
	}

	must(session.Checkout(ctx, dir, CLI.Sync.Ref))
	must(session.SubmoduleSync(ctx, dir, true))
	must(session.SubmoduleUpdate(ctx, dir, depth, true))

	slog.Info("sync complete", logfields.Path(dir), slog.String("ref", CLI.Sync.Ref))
}

// must continues only on a clean exit.
func must(code int, err error) {
	if err != nil || code != 0 {
		exitWith(code, err)
	}
}

func reportVersions(session *gitcli.Session) {
	if v, ok := session.GitVersion(); ok {
		fmt.Printf("git %s (%s)\n", v, session.GitPath())
	} else {
		fmt.Println("git version undetermined")
	}
	if v, ok := session.LFSVersion(); ok {
		fmt.Printf("git-lfs %s\n", v)
	} else if session.LFSAvailable() {
		fmt.Println("git-lfs version undetermined")
	} else {
		fmt.Println("git-lfs not installed")
	}
	for _, a := range session.Advisories() {
		fmt.Printf("advisory: %s\n", a)
	}
	fmt.Printf("gitdriver %s (%s, %s)\n", version.Version, version.GitCommit, version.BuildTime)
}

func runDaemon(ctx context.Context, cfg *config.Config, session *gitcli.Session, reg *prom.Registry) {
	if reg != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.HTTPHandler(reg))
		srv := &http.Server{Addr: cfg.Telemetry.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("metrics endpoint listening", slog.String("addr", cfg.Telemetry.MetricsListen))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics endpoint failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	workspaces := make([]string, 0, len(cfg.Workspaces))
	for _, w := range cfg.Workspaces {
		workspaces = append(workspaces, w.Path)
	}
	if len(workspaces) == 0 {
		slog.Error("daemon mode requires at least one workspace in configuration")
		os.Exit(1)
	}

	sched, err := maintenance.NewScheduler(session, cfg.Fetch.LFS)
	if err != nil {
		slog.Error("failed to create scheduler", logfields.Error(err))
		os.Exit(1)
	}
	if _, err := sched.ScheduleGC(cfg.Maintain.IntervalDuration(), workspaces); err != nil {
		slog.Error("failed to schedule maintenance", logfields.Error(err))
		os.Exit(1)
	}
	sched.Start()
	defer func() { _ = sched.Stop() }()

	slog.Info("daemon running", slog.Int("workspaces", len(workspaces)))
	<-ctx.Done()
	slog.Info("shutting down")
}

// exitWith terminates with the operation's exit code; errors (cancellation,
// spawn failure) map to exit 1.
func exitWith(code int, err error) {
	if err != nil {
		slog.Error("operation aborted", logfields.Error(err))
		os.Exit(1)
	}
	os.Exit(code)
}
