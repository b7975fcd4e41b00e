package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"classtest/internal/app"
	"classtest/internal/db"
)

func main() {
	cfg := app.LoadConfig()

	dbConn, err := db.OpenWithConfig(context.Background(), db.Driver(cfg.DBDriver), cfg.DBDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
	})
	if err != nil {
		log.Printf("database error: %v", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	r, err := app.NewRouter(cfg, dbConn)
	if err != nil {
		log.Printf("router error: %v", err)
		os.Exit(1)
	}

	log.Printf("classtest web listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
