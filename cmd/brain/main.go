// Package main provides the brain command-line interface: question answering
// over a personal notes vault, a sandboxed file agent, and vault ingestion.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(realDeps()).ExecuteContext(ctx)
	stop()
	if err != nil {
		logrus.Fatal(err)
	}
}
