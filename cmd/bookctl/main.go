// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carterperez-dev/bookheaven/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.OpenMongo).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "bookctl:", err)
		os.Exit(1)
	}
}
