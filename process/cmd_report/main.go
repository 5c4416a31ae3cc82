package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gryffintwin/pkg/envconf"
	"gryffintwin/process/report"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "demo@example.com", "account to report for")
	month := flag.String("month", "", "month to report (YYYY-MM, default current month)")
	list := flag.Bool("list", false, "list matching rows")
	flag.Parse()

	envconf.LoadDotEnv()
	dsn := envconf.String("DB_DSN", "")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	if *month == "" {
		*month = report.CurrentMonth()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := report.Run(context.Background(), db, os.Stdout, *email, *month, *list); err != nil {
		log.Fatal(err)
	}
}
