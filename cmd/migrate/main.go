// Command migrate applies the embedded schema migrations to the configured
// database. Usage: migrate [up|down] (default up).
package main

import (
	"log"
	"os"

	"wtrfll/server/internal/config"
	"wtrfll/server/internal/db/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("migrate: DATABASE_URL must be set")
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	switch direction {
	case "up":
		if err := migrate.Up(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Print("migrate: schema is up to date")
	case "down":
		if err := migrate.Down(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Print("migrate: rolled back one migration")
	default:
		log.Fatalf("migrate: unknown direction %q (want up or down)", direction)
	}
}
