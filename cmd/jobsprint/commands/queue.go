package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/justsurfingit/jobsprint/internal/models"
)

// QueueListAction prints today's queue, newest first.
func QueueListAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	queue, err := app.Queue.ListToday(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch queue: %w", err)
	}
	if len(queue) == 0 {
		fmt.Println("Queue is empty for today")
		return nil
	}
	return renderQueue(os.Stdout, queue)
}

// QueueSkipAction marks one queue entry as skipped.
func QueueSkipAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("--id is required")
	}

	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	row, err := app.Queue.SetStatus(ctx, id, models.StatusSkipped, nil)
	if err != nil {
		return fmt.Errorf("failed to skip %s: %w", id, err)
	}
	fmt.Printf("Skipped %s (%s)\n", row.ID, row.URL)
	return nil
}

func renderQueue(w io.Writer, queue []models.QueuedApplication) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Status", "Platform", "Company", "Title", "Added")
	for _, row := range queue {
		if err := table.Append(
			row.ID,
			string(row.Status),
			string(row.Platform),
			row.Company,
			truncateString(row.Title, 40),
			row.CreatedAt.Format("15:04"),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
