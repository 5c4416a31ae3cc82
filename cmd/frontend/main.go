// Command frontend serves the browser pages and keeps each browser's API token in a Redis-backed session.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"gryffintwin/pkg/bridge"
	"gryffintwin/pkg/envconf"

	"github.com/redis/go-redis/v9"
)

func connectRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 5
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func main() {
	envconf.LoadDotEnv()
	cfg, err := bridge.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	rdb, err := connectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect redis: ", err)
	}
	defer rdb.Close()

	sessions := bridge.NewSessionStore(rdb, cfg.IdleTimeout, time.Now)
	srv, err := bridge.NewServer(cfg, sessions, bridge.NewClient(cfg.BackendURL, cfg.BackendTimeout))
	if err != nil {
		log.Fatal(err)
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("frontend listening on %s (api %s)", cfg.Addr, cfg.BackendURL)
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Print(err)
	}
}
