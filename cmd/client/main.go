package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/guardianbox/internal/client/cli"
	"github.com/dmitrijs2005/guardianbox/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
