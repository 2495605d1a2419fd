package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ghexplorer/render"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, &app{}, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, render.Error(err.Error()))
		stop()
		os.Exit(1)
	}
}
