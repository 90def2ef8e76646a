package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/sigmax/internal/config"
	"github.com/dmitrijs2005/sigmax/internal/server"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
