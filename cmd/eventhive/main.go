// Command eventhive is a CLI for the EventHive session core: sign in,
// inspect and watch the local auth session against a real API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func usage() {
	fmt.Fprintf(os.Stderr, `eventhive CLI
Usage:
  eventhive [flags] <cmd> [args]

Commands:
  login      -u <email> -p <password>
  register   -u <email> -p <password> --first-name N --last-name N
  refresh
  logout
  whoami
  watch
`)
	os.Exit(2)
}

func main() {
	c := NewConfig()
	if err := c.LoadDotEnv(os.Getwd); err != nil {
		slog.Error("can't read .env file", "error", err.Error())
		os.Exit(1)
	}
	c.LoadEnv(os.Getenv)

	args := os.Args[1:]
	cmdAt := -1
	for i, arg := range args {
		if len(arg) > 0 && arg[0] != '-' {
			cmdAt = i
			break
		}
	}
	if cmdAt < 0 {
		usage()
	}

	if err := c.ParseFlags(args[:cmdAt]); err != nil {
		slog.Error("can't parse flags", "error", err.Error())
		os.Exit(1)
	}

	app, err := NewApp(c)
	if err != nil {
		slog.Error("can't initialize app, sorry", "error", err.Error())
		os.Exit(1)
	}

	// Initialize context that cancelled on SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	if err := app.Run(ctx, args[cmdAt], args[cmdAt+1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
