package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/command"
	"github.com/yndnr/wizcli-go/internal/infra/shutdown"
)

func main() {
	os.Exit(run())
}

func run() int {
	sh := shutdown.NewHandler(5 * time.Second)
	ctx, stop := sh.Notify(context.Background())
	defer stop()

	rt := command.NewRuntime(command.Options{})
	sh.OnShutdown(func(context.Context) error {
		return rt.Close()
	})

	err := command.App(rt).RunContext(ctx, os.Args)
	if closeErr := sh.Shutdown(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", closeErr)
	}
	if err == nil {
		return 0
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
