package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"gryffintwin/pkg/demo"
	"gryffintwin/pkg/envconf"
	"gryffintwin/pkg/identity"
	"gryffintwin/pkg/token"
)

func main() {
	envconf.LoadDotEnv()
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if cmd != "serve" && cmd != "migrate" && cmd != "seed" {
		fmt.Fprintf(os.Stderr, "usage: %s [serve|migrate|seed]\n", os.Args[0])
		os.Exit(2)
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	users, err := identity.NewStore(db)
	if err != nil {
		log.Fatal(err)
	}

	switch cmd {
	case "migrate":
		migrate(db)
		fmt.Println("migration completed")
		return
	case "seed":
		migrate(db)
		if err := demo.Seed(context.Background(), db, users, time.Now()); err != nil {
			log.Fatal("seeding failed: ", err)
		}
		fmt.Println("migration and seeding completed")
		return
	}

	if cfg.AutoMigrate {
		migrate(db)
	}
	srv := newServer(cfg, db, users, token.NewService(cfg.JWTSecret), time.Now)
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("api listening on %s (env=%s)", cfg.Addr, cfg.Env)
	log.Fatal(httpSrv.ListenAndServe())
}
