package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"gryffintwin/pkg/envconf"
	"gryffintwin/pkg/identity"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "", "email of the account to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()
	if *email == "" || *password == "" {
		log.Fatal("--email and --password are required")
	}
	envconf.LoadDotEnv()
	dsn := envconf.String("DB_DSN", "")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	users, err := identity.NewStore(db)
	if err != nil {
		log.Fatal(err)
	}
	if err := users.SetPassword(context.Background(), *email, *password); err != nil {
		log.Fatalf("reset failed: %v", err)
	}
	fmt.Printf("Password reset for %s\n", identity.NormalizeEmail(*email))
}
