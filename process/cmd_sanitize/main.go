package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gryffintwin/pkg/envconf"
	"gryffintwin/process/sanitize"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	var opts sanitize.Options
	flag.BoolVar(&opts.DryRun, "dry-run", true, "Don't perform destructive actions; show what would be done")
	flag.BoolVar(&opts.Yes, "yes", false, "Confirm destructive action (required to actually truncate)")
	flag.BoolVar(&opts.Reseed, "reseed", false, "After truncation, reseed the demo account")
	flag.StringVar(&opts.Tables, "tables", sanitize.DefaultTables, "Comma-separated list of tables to truncate")
	flag.Parse()

	envconf.LoadDotEnv()
	dsn := envconf.String("DB_DSN", "")
	if dsn == "" {
		log.Fatal("DB_DSN must be set to run db_sanitize")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := sanitize.Run(context.Background(), db, os.Stdout, opts); err != nil {
		log.Fatal(err)
	}
}
