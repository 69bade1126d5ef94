package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-formdispatch/internal/cli"
)

var version = "dev"

func main() {
	app := cli.New(cli.Options{Version: version})
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "formdispatch:", err)
		os.Exit(1)
	}
}
