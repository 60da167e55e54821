package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/justsurfingit/jobsprint/cmd/jobsprint/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "jobsprint",
		Usage: "find fresh remote postings and work through a daily application queue",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP API",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:  "port",
						Usage: "listen port (overrides PORT)",
					},
				},
				Action: commands.ServeAction,
			},
			{
				Name:  "snipe",
				Usage: "search every job board for a role",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "role",
						Usage:    "role to search for, e.g. \"Data Analyst\"",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "window",
						Usage: "recency window: h (last hour) or d (last day)",
						Value: "h",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum postings to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "enqueue",
						Usage: "add the results to today's queue",
					},
				},
				Action: commands.SnipeAction,
			},
			{
				Name:  "queue",
				Usage: "application queue commands",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "show today's queue",
						Flags:  []cli.Flag{envFlag()},
						Action: commands.QueueListAction,
					},
					{
						Name:  "skip",
						Usage: "mark a queue entry as skipped",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "id",
								Usage:    "queue entry id",
								Required: true,
							},
						},
						Action: commands.QueueSkipAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to the .env file",
		Value: ".env",
	}
}
