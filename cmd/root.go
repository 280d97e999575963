package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spmid-tools",
	Short: "Piano replay timing analysis",
	Long:  `Compares recorded and replayed SPMID tracks to measure timing fidelity and flag mechanical faults.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
