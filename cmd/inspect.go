package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoShengSPiano/test-tools/spmid"
	"github.com/XiaoShengSPiano/test-tools/util"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.spmid>",
	Short: "Inspects an spmid file",
	Long:  `Inspects an spmid file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	f, err := spmid.ReadFile(path)
	if err != nil {
		panic("Could not read spmid file: " + err.Error())
	}

	fmt.Printf("version: 0x%08X\n", f.Version)
	fmt.Printf("total time: %v\n", f.TotalTime)
	for _, key := range util.GetKeys(f.Info) {
		fmt.Printf("info %v: %v\n", key, f.Info[key])
	}

	for t, track := range f.Tracks {
		fmt.Printf("track %v: %v notes\n", t, len(track))
		for i := range track {
			n := &track[i]
			fmt.Printf("  note %v: key=%v keyOn=%v keyOff=%v hammers=%v touch=%v uuid=%v\n",
				i, n.KeyID, n.KeyOn(), n.KeyOff(), len(n.Hammers), len(n.AfterTouch), n.UUID)
		}
	}
}
