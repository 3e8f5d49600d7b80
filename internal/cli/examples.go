package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yashubustudio/clinicalreport/internal/app"
)

var headingText = color.New(color.Bold).SprintFunc()

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "examples",
		Short:       "List built-in example reports and QA cases",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfig": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headingText("Reports"))
			for _, ex := range app.ExampleReports() {
				fmt.Fprintf(out, "  %s\n", ex.Name)
				for _, line := range strings.Split(strings.TrimSpace(ex.Report), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
			fmt.Fprintln(out, headingText("Question answering"))
			for _, ex := range app.QAExamples() {
				fmt.Fprintf(out, "  %s\n    Q: %s\n", ex.Name, ex.Question)
			}
			return nil
		},
	}
}
