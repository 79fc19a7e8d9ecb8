package cmd

import (
	"github.com/neurobin-systems/neurobin/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Classification accuracy evaluation tools",
		Long: `Evaluation tools for measuring waste classification accuracy against
labeled image datasets, with per-category accuracy breakdowns and saved
YAML result files.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}
