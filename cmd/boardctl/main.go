// Command boardctl is the terminal client for the listing API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arielspace/listing-board/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
