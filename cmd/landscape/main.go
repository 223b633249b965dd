package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// main wires signal handling and the process exit code; everything else lives
// in run so tests can drive the command in-process.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
