package main

import (
	"context"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/penguin-works/kouji-backend/config"
	"github.com/penguin-works/kouji-backend/internal/bootstrap"
	koujimcp "github.com/penguin-works/kouji-backend/internal/mcp"
)

func main() {
	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := bootstrap.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	ks := koujimcp.NewKoujiServer(app.Kouji, cfg.App.Version)
	if err := server.ServeStdio(ks.McpServer); err != nil {
		log.Printf("mcp server: %v", err)
	}
}
