package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"optitech/internal/app/analysis"
	"optitech/internal/app/common"
)

var (
	analyzeTop    int
	analyzeReport bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report OS, CPU, memory, disk, process and service figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		if analyzeTop < 1 {
			return fmt.Errorf("--top must be >= 1")
		}
		result, err := analysis.NewService().Run(cmd.Context(), app, analysis.Options{Top: analyzeTop, Report: analyzeReport})
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 5, "Number of top processes by memory")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report", false, "Write a Markdown report to <data>/reports")
}
