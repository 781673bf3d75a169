// migrate applies the embedded SQL migrations: go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"fmt"
	"os"

	"storefront-auth/backend/internal/config"
	"storefront-auth/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(2)
	}

	if err := migrate.Run(cfg.DatabaseURL, dir); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	version, dirty, err := migrate.Version(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate: version:", err)
		os.Exit(1)
	}
	fmt.Printf("schema at version %d (dirty=%t)\n", version, dirty)
}
