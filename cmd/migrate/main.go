package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"trendboard/internal/db"
	"trendboard/internal/repository"

	"github.com/joho/godotenv"
)

const (
	cmdUp      = "up"
	cmdDown    = "down"
	cmdVersion = "version"

	usage = "usage: go run ./cmd/migrate [up|down|version] [steps]"
)

type schemaMigrator interface {
	Up(ctx context.Context) (int, error)
	Down(ctx context.Context, steps int) (int, error)
	Version(ctx context.Context) (int64, string, error)
}

var (
	loadEnvFunc     = godotenv.Load
	connectFunc     = db.Connect
	newMigratorFunc = func(d repository.MigrationDB) (schemaMigrator, error) {
		return repository.NewMigrator(d)
	}
)

func main() {
	loadEnvFunc()

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	ctx := context.Background()
	pool, err := connectFunc(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	migrator, err := newMigratorFunc(pool)
	if err != nil {
		log.Fatalf("load migrations: %v", err)
	}

	msg, err := run(ctx, migrator, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	log.Println(msg)
}

func run(ctx context.Context, m schemaMigrator, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf(usage)
	}
	switch args[0] {
	case cmdUp:
		applied, err := m.Up(ctx)
		if err != nil {
			return "", fmt.Errorf("apply migrations up: %w", err)
		}
		return fmt.Sprintf("migrations up complete (%d applied)", applied), nil
	case cmdDown:
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return "", fmt.Errorf("invalid down steps: %q", args[1])
			}
			steps = n
		}
		rolledBack, err := m.Down(ctx, steps)
		if err != nil {
			return "", fmt.Errorf("apply migrations down: %w", err)
		}
		return fmt.Sprintf("migrations down complete (%d rolled back)", rolledBack), nil
	case cmdVersion:
		version, name, err := m.Version(ctx)
		if err != nil {
			return "", fmt.Errorf("read current version: %w", err)
		}
		if version == 0 {
			return "no migrations applied", nil
		}
		return fmt.Sprintf("current version: %d (%s)", version, name), nil
	default:
		return "", fmt.Errorf("unknown command %q. %s", args[0], usage)
	}
}
