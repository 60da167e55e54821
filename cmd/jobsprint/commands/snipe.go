package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/justsurfingit/jobsprint/internal/models"
	"github.com/justsurfingit/jobsprint/internal/services"
)

// SnipeAction runs one search and prints the postings. With --enqueue the
// results are also added to today's queue.
func SnipeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Sniper.Snipe(ctx, services.SnipeRequest{
		Role:   cmd.String("role"),
		Window: cmd.String("window"),
		Limit:  cmd.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("snipe failed: %w", err)
	}

	if res.Count == 0 {
		fmt.Printf("No postings for %q in the last %s\n", res.Role, windowLabel(res.Window))
		return nil
	}
	if err := renderPostings(os.Stdout, res.Jobs); err != nil {
		return err
	}

	if !cmd.Bool("enqueue") {
		return nil
	}
	apps := make([]services.NewApplication, 0, len(res.Jobs))
	for _, job := range res.Jobs {
		apps = append(apps, services.ApplicationFromPosting(job))
	}
	inserted, err := app.Queue.Enqueue(ctx, apps)
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}
	fmt.Printf("\nQueued %d new of %d found\n", inserted, res.Count)
	return nil
}

func renderPostings(w io.Writer, jobs []models.JobPosting) error {
	table := tablewriter.NewWriter(w)
	table.Header("Platform", "Company", "Title", "URL")
	for _, job := range jobs {
		if err := table.Append(
			string(job.Platform),
			job.Company,
			truncateString(job.Title, 50),
			job.URL,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func windowLabel(w string) string {
	if w == services.WindowDay {
		return "24 hours"
	}
	return "hour"
}

func truncateString(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		if n < 0 {
			n = 0
		}
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
