package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoShengSPiano/test-tools/export"
	"github.com/XiaoShengSPiano/test-tools/spmid"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file.spmid> <out.mid>",
	Short: "Exports an spmid file to standard MIDI",
	Long:  `Exports an spmid file to standard MIDI`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			panic("Need 2 args...")
		}
		runExport(args[0], args[1])
	},
}

func runExport(inPath, outPath string) {
	f, err := spmid.ReadFile(inPath)
	if err != nil {
		panic("Could not read spmid file: " + err.Error())
	}
	if err := export.WriteFile(f, outPath); err != nil {
		panic("Could not export midi file: " + err.Error())
	}
	fmt.Printf("Wrote %v tracks to %v\n", f.TrackCount(), outPath)
}
