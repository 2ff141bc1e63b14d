package service

import (
	"encoding/json"
	"fmt"

	"bizdash/app/analytics"
	"bizdash/output"

	"github.com/spf13/cobra"
)

func newReportCommand(cfg configFunc) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch the dashboard data and print the analytics overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Dashboard.Load(cmd.Context()); err != nil {
				return err
			}
			report := analytics.Build(app.Dashboard.State())
			report.AccountsByRole = analytics.AccountsByRole(app.Sessions.Accounts())
			if asJSON {
				enc := json.NewEncoder(output.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func printReport(r analytics.Report) {
	output.Section("Overview")
	output.Info("Posts: %d", r.Summary.TotalPosts)
	output.Info("Users: %d", r.Summary.TotalUsers)
	output.Info("Comments: %d", r.Summary.TotalComments)

	output.Section("Recent posts")
	if len(r.Summary.RecentPosts) == 0 {
		output.Muted("No posts")
	}
	for _, p := range r.Summary.RecentPosts {
		output.Primary("#%d %s", p.ID, p.Title)
	}

	printCounts("Posts by user", r.PostsByUser)
	printCounts("Post title lengths", r.PostTitleLengths)
	printCounts("Comment lengths", r.CommentLengths)
	printCounts("Most commented posts", r.CommentsByPost)
	printCounts("Top commenters", r.CommentsByEmail)
	printCounts("Users by company", r.UsersByCompany)
	printCounts("Users by city", r.UsersByCity)
	printCounts("Accounts by role", r.AccountsByRole)
}

func printCounts(title string, counts []analytics.Count) {
	output.Section(title)
	if len(counts) == 0 {
		output.Muted("No data")
		return
	}
	for _, c := range counts {
		output.Info("%s", fmt.Sprintf("%-30s %d", c.Label, c.Count))
	}
}
