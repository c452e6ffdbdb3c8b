package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"quiz-client/internal/cli"
	"quiz-client/internal/config"
	"quiz-client/internal/logger"
	"quiz-client/internal/portal"
	"quiz-client/internal/session"
	"quiz-client/internal/session/sqlite"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "quiz service base URL")
	flag.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (pretty or json)")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file instead of stderr")
	flag.StringVar(&cfg.SessionStore, "session-store", cfg.SessionStore, "where the login is kept (file, sqlite or redis)")
	flag.StringVar(&cfg.SessionPath, "session-path", cfg.SessionPath, "session file or database path")
	flag.StringVar(&cfg.SessionProfile, "profile", cfg.SessionProfile, "session profile for shared stores")
	flag.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "redis URL for the redis session store")
	flag.StringVar(&cfg.DisplayTimezone, "tz", cfg.DisplayTimezone, "time zone for quiz start times")
	flag.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for exported summaries")
	flag.StringVar(&cfg.PDFPageSize, "page-size", cfg.PDFPageSize, "PDF page size (A4 or Letter)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		file, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()
		logOut = file
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, logOut)

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client := portal.NewClient(cfg.ServerURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)

	appCfg := cli.Config{
		Backend:   client,
		Session:   session.NewManager(store, log),
		ServerURL: client.BaseURL(),
		Location:  cfg.Location(),
		ExportDir: cfg.ExportDir,
		PageSize:  cfg.PDFPageSize,
		Logger:    log,
	}
	if term.IsTerminal(int(syscall.Stdin)) {
		appCfg.ReadPassword = func() (string, error) {
			raw, err := term.ReadPassword(int(syscall.Stdin))
			return string(raw), err
		}
	}

	return cli.Run(ctx, os.Stdin, os.Stdout, appCfg)
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case "sqlite":
		store, err := sqlite.NewStore(cfg.SessionPath, cfg.SessionProfile)
		if err != nil {
			return nil, nil, fmt.Errorf("open session database: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "redis":
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rdb, err := session.NewRedisClient(connectCtx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(rdb, cfg.SessionProfile, cfg.SessionTTL), func() { _ = rdb.Close() }, nil
	default:
		store, err := session.NewFileStore(cfg.SessionPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
