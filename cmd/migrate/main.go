// Command migrate manages the kaupa schema with goose. Commands that only touch
// files (create, validate) never open a database connection.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
	"github.com/gsindri/kaupa-skil-sub004/pkg/migrate"
)

type options struct {
	dir     string
	name    string
	version string
}

type offlineCmd func(opts options) (string, error)

type onlineCmd func(ctx context.Context, conn *sql.DB, src migrate.Source, opts options) (string, error)

var offline = map[string]offlineCmd{
	"create": func(opts options) (string, error) {
		if opts.name == "" {
			return "", errors.New("-name is required")
		}
		dir := opts.dir
		if dir == "" {
			dir = migrate.SourceDir
		}
		path, err := migrate.CreateSQLMigration(dir, opts.name)
		return "created " + path, err
	},
	"validate": func(opts options) (string, error) {
		if opts.dir == "" {
			return "embedded migrations ok", migrate.Validate(migrate.Embedded(), migrate.DefaultDir)
		}
		return opts.dir + " ok", migrate.ValidateDir(opts.dir)
	},
}

var online = map[string]onlineCmd{
	"up":     gooseCmd("up"),
	"down":   gooseCmd("down"),
	"status": gooseCmd("status"),
	"version": func(_ context.Context, conn *sql.DB, src migrate.Source, _ options) (string, error) {
		v, err := migrate.Version(conn, src)
		return fmt.Sprintf("current version: %d", v), err
	},
	"to": func(ctx context.Context, conn *sql.DB, src migrate.Source, opts options) (string, error) {
		if opts.version == "" {
			return "", errors.New("-version is required")
		}
		return "migrated to " + opts.version, migrate.MigrateToVersion(ctx, conn, src, opts.version)
	},
}

func gooseCmd(name string) onlineCmd {
	return func(ctx context.Context, conn *sql.DB, src migrate.Source, _ options) (string, error) {
		return name + " done", migrate.Run(ctx, conn, src, name)
	}
}

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "up|down|status|version|to|create|validate")
	var opts options
	flag.StringVar(&opts.dir, "dir", "", "migrations directory; the embedded set is used when empty")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target YYYYMMDDHHMMSS for -cmd=to")
	flag.Parse()

	if run, ok := offline[*cmd]; ok {
		exit(run(opts))
	}
	run, ok := online[*cmd]
	if !ok {
		exit("", fmt.Errorf("unknown -cmd %q", *cmd))
	}

	cfg, err := config.Load()
	if err != nil {
		exit("", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}
	defer client.Close()

	conn, err := client.SQL()
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}

	msg, err := run(ctx, conn, migrate.Source{Driver: client.Driver(), Dir: opts.dir}, opts)
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		client.Close()
		os.Exit(1)
	}
	fmt.Println(msg)
}

func exit(msg string, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	fmt.Println(msg)
	os.Exit(0)
}
