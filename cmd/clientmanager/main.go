package main

import (
	"context"
	"log"
	"os"

	"client-manager-api/internal"
)

func main() {
	ctx := context.Background()

	app, err := internal.NewApp(ctx)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer app.Close()

	app.InitControllers()

	if err = app.Run(ctx); err != nil {
		app.Logger().Sugar().Errorf("clientmanagerapi stopped with error: %v", err)
		os.Exit(1)
	}
}
