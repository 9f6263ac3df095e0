package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var dbURL, migrationsPath, migrationsTable string
	var down bool

	flag.StringVar(&dbURL, "db-url", "", "postgres connection url")
	flag.StringVar(&migrationsPath, "migrations-path", "./migrations", "path to migrations")
	flag.StringVar(&migrationsTable, "migrations-table", "migrations", "name of migrations table")
	flag.BoolVar(&down, "down", false, "roll back every migration")
	flag.Parse()

	if dbURL == "" {
		log.Fatal("db-url is required")
	}

	m, err := migrate.New(
		"file://"+migrationsPath,
		fmt.Sprintf("%s&x-migrations-table=%s", withQuery(dbURL), migrationsTable),
	)
	if err != nil {
		log.Fatalf("failed to init migrator: %v", err)
	}
	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
			return
		}
		log.Fatalf("failed to apply migrations: %v", err)
	}

	fmt.Println("migrations applied")
}

func withQuery(url string) string {
	if strings.Contains(url, "?") {
		return url
	}
	return url + "?"
}
