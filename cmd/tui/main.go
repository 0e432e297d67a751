package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "postgrest-tui",
		Usage: "Browse tables exposed by a PostgREST server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "initial PostgREST base URL", Value: "http://localhost:3000"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "initial YAML profile path"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tui := NewTUI(ctx, cmd.String("url"), cmd.String("config"))
			go func() {
				<-ctx.Done()
				tui.Stop()
			}()
			return tui.Run()
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
