package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penguin-works/kouji-backend/config"
	"github.com/penguin-works/kouji-backend/internal/bootstrap"
	"github.com/penguin-works/kouji-backend/internal/worker"
)

func main() {
	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	sched, err := worker.NewScheduler(app.Kouji, cfg.Kouji.Path, cfg.Kouji.SnapshotCron, app.Kouji.Location())
	if err != nil {
		log.Fatal(err)
	}

	switch cmd {
	case "run":
		sched.Start()
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sched.Stop(stopCtx)
	case "once":
		if err := sched.RunOnce(ctx); err != nil {
			log.Fatalf("snapshot: %v", err)
		}
	default:
		log.Fatalf("unknown command: %s (usage: worker [run|once])", cmd)
	}
}
