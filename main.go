package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.design/x/hotkey/mainthread"

	"voicekey/internal/cli"
)

func main() {
	code := 0
	// macOS delivers hotkey events on the main thread only.
	mainthread.Init(func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := cli.Execute(ctx); err != nil {
			code = 1
		}
	})
	os.Exit(code)
}
