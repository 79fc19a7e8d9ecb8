package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neurobin",
		Short: "AI-powered waste classification service",
		Long: `NeuroBin classifies waste images into six disposal categories using
vision-capable LLMs and recommends the optimal disposal method for each.

It serves a web interface with upload and camera capture, a one-shot CLI
classifier, and evaluation tools for measuring accuracy against labeled
datasets.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
