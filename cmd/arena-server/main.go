package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dungeonaut-arena/internal/logging"
	"dungeonaut-arena/internal/persistence"
	"dungeonaut-arena/internal/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		logging.Fatal("load config", err, nil)
	}

	repo, err := persistence.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		logging.Fatal("open database", err, logging.Fields{"path": cfg.DatabasePath})
	}
	defer repo.Close()

	dispatcher := server.NewDispatcher(cfg, repo)
	go dispatcher.Run()
	defer dispatcher.Stop()

	srv := server.NewServer(cfg, dispatcher)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logging.Info("shutting down", nil)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("server stopped", err, nil)
	}
}
