package main

import (
	"context"
	"log"
	"os"

	"github.com/scampozano/deepurge/internal/agent"
	"github.com/scampozano/deepurge/internal/buildinfo"
	"github.com/scampozano/deepurge/internal/config"
	"github.com/scampozano/deepurge/internal/flagx"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := agent.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	// Flags are consumed by the config layer; what remains is the command.
	args := flagx.StripArgs(os.Args[1:], config.ConsumedFlags)

	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
