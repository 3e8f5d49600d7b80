package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yashubustudio/clinicalreport/internal/app"
)

var (
	presentText = color.New(color.FgRed, color.Bold).SprintFunc()
	absentText  = color.New(color.FgGreen).SprintFunc()
	mentionText = color.New(color.FgYellow).SprintFunc()
)

func newLabelsCmd(rt *runtime) *cobra.Command {
	var (
		file    string
		example string
		cleanup bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "labels [TEXT]",
		Short: "Detect observations in a clinical report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := reportText(cmd.InOrStdin(), args, file, example)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("cleanup") {
				cleanup = rt.cfg.Labels.Cleanup
			}
			svc, err := rt.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.ExtractLabels(cmd.Context(), report, cleanup)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printLabels(out, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the report from a file (- for stdin)")
	cmd.Flags().StringVar(&example, "example", "", "use a built-in example report by name")
	cmd.Flags().BoolVar(&cleanup, "cleanup", true, "normalize sentences before matching (default from labels.cleanup)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func reportText(stdin io.Reader, args []string, file, example string) (string, error) {
	switch {
	case example != "":
		ex, ok := app.FindExample(example)
		if !ok {
			return "", fmt.Errorf("unknown example %q", example)
		}
		return ex.Report, nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read report: %w", err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	}
	return "", app.ErrEmptyReport
}

func printLabels(w io.Writer, res app.LabelResult) {
	width := 0
	for _, o := range res.Observations {
		if n := len(o.Category); n > width {
			width = n
		}
	}
	for _, o := range res.Observations {
		status := absentText("Absent")
		if o.Present {
			status = presentText("Present")
		}
		fmt.Fprintf(w, "%-*s  %s\n", width, o.Category, status)
	}
	if len(res.Mentions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Mentions:")
		for _, m := range res.Mentions {
			fmt.Fprintf(w, "  %s [%d:%d] %s\n", mentionText(m.Phrase), m.Start, m.End, m.Category)
		}
	}
	fmt.Fprintf(w, "\nProcessing Time: %.3f seconds\n", res.Elapsed.Seconds())
}

func trimmed(s string) string { return strings.TrimSpace(s) }
