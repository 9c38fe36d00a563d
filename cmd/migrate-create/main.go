// Command migrate-create writes a timestamped pair of up/down SQL stubs
// into db/migrations: migrate-create <name>.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"codewords/internal/config"
)

var namePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: migrate-create <name>")
	}
	name := os.Args[1]
	if !namePattern.MatchString(name) {
		log.Fatalf("invalid migration name %q: use lowercase letters, digits, and underscores", name)
	}

	if err := os.MkdirAll(config.MigrationsDir, 0o755); err != nil {
		log.Fatalf("create %s: %v", config.MigrationsDir, err)
	}

	stem := filepath.Join(config.MigrationsDir, time.Now().UTC().Format("20060102150405")+"_"+name)
	for _, suffix := range []string{".up.sql", ".down.sql"} {
		path := stem + suffix
		if err := writeStub(path); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("created %s", path)
	}
}

// writeStub refuses to clobber an existing file so a reused name cannot
// silently overwrite an applied migration.
func writeStub(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, "-- write migration SQL here"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
