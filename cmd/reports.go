package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	reportsLimit  int
	reportsOffset int
)

// reportsCmd represents the reports command
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List moderation reports",
	Long:  `Displays moderation reports recorded by the pipeline, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		reports, err := appInstance.ModerationStore.ListReports(cmd.Context(), reportsLimit, reportsOffset)
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}
		if len(reports) == 0 {
			fmt.Println("No moderation reports found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Report ID", "Content", "Type", "Verdict", "Reporter", "Created At"})
		table.SetBorder(true)
		table.SetRowLine(true)

		for _, r := range reports {
			verdict := color.GreenString("passed")
			if r.IsNegative {
				verdict = color.RedString("rejected")
			}
			table.Append([]string{
				r.ID.String(),
				r.ContentID.String(),
				string(r.ContentType),
				verdict,
				string(r.ReporterKind),
				r.CreatedAt.Format(time.RFC3339),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)

	reportsCmd.Flags().IntVarP(&reportsLimit, "limit", "n", 20, "Maximum number of reports to list")
	reportsCmd.Flags().IntVarP(&reportsOffset, "offset", "o", 0, "Number of reports to skip")
}
