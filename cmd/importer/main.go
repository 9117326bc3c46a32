// Command importer loads a ward-exported workbook into the record store.
//
// Usage:
//
//	importer [-actor UUID] workbook.xlsx
//
// Connection and logging settings come from the environment (see
// internal/config); a .env file in the working directory is honored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/saludaustral/partoreg/internal/config"
	"github.com/saludaustral/partoreg/internal/importer"
	"github.com/saludaustral/partoreg/internal/logging"
	"github.com/saludaustral/partoreg/internal/store"
	"github.com/saludaustral/partoreg/internal/tabular"
)

func main() {
	actorFlag := flag.String("actor", "", "UUID of the user running the import (optional)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: importer [-actor UUID] workbook.xlsx")
		os.Exit(2)
	}
	path := flag.Arg(0)

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var actor uuid.NullUUID
	if *actorFlag != "" {
		id, err := uuid.Parse(*actorFlag)
		if err != nil {
			slog.Error("invalid actor UUID", "error", err)
			os.Exit(1)
		}
		actor = uuid.NullUUID{UUID: id, Valid: true}
	}

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Import.Timeout)
	defer cancelTimeout()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	pg := store.NewPG(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	src, err := tabular.OpenWorkbookFile(path)
	if err != nil {
		slog.Error("failed to open workbook", "path", path, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	svc := importer.NewService(pg, time.Now)
	result, err := svc.ImportWorkbook(ctx, src, actor)
	if err != nil {
		slog.Error("import failed", "error", importer.FormatUserError(err), "cause", err)
		os.Exit(1)
	}

	fmt.Println(importer.Summary(result))

	if result.ErrorCount > 0 {
		reportPath := filepath.Join(cfg.Import.ReportDir, reportName(path))
		f, err := os.Create(reportPath)
		if err != nil {
			slog.Error("failed to create failure report", "path", reportPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := importer.WriteFailureReport(f, result); err != nil {
			slog.Error("failed to write failure report", "path", reportPath, "error", err)
			os.Exit(1)
		}
		slog.Info("failure report written", "path", reportPath, "errors", result.ErrorCount)
	}
}

// reportName derives the failure-report filename from the source workbook.
func reportName(srcPath string) string {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return base + "_errores.xlsx"
}
