package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/XiaoShengSPiano/test-tools/analysis"
	"github.com/XiaoShengSPiano/test-tools/calib"
	"github.com/XiaoShengSPiano/test-tools/constants"
	"github.com/XiaoShengSPiano/test-tools/filter"
	"github.com/XiaoShengSPiano/test-tools/match"
	"github.com/XiaoShengSPiano/test-tools/spmid"
)

var analyzePreset string
var analyzeAlign bool

func init() {
	analyzeCmd.Flags().StringVar(&analyzePreset, "preset", "classic", "matching preset: classic or precise")
	analyzeCmd.Flags().BoolVar(&analyzeAlign, "align", false, "estimate and compensate the global clock offset")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.spmid>",
	Short: "Analyzes a record/replay file",
	Long:  `Analyzes a record/replay file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		runAnalyze(args[0])
	},
}

func presetByName(name string) match.Config {
	switch name {
	case "precise":
		return match.PrecisePreset()
	case "classic":
		return match.ClassicPreset()
	default:
		panic("Unknown preset: " + name)
	}
}

// loadChecker picks the calibration source: DynamoDB table when configured,
// otherwise the local JSON files, otherwise no threshold check at all.
func loadChecker() filter.ThresholdChecker {
	if table := constants.GetCalibrationTable(); table != "" {
		return calib.LoadDynamoDB(table)
	}
	checker, err := calib.LoadDir(constants.GetCalibrationDir())
	if err != nil {
		fmt.Printf("Running without calibration because: %v\n", err)
		return nil
	}
	return checker
}

func runAnalyze(path string) {
	f, err := spmid.ReadFile(path)
	if err != nil {
		panic("Could not read spmid file: " + err.Error())
	}
	if f.TrackCount() < 2 {
		panic(fmt.Sprintf("Need at least 2 tracks, file has %v", f.TrackCount()))
	}

	res := analysis.Run(f.Tracks[0], f.Tracks[1], analysis.Options{
		Match:   presetByName(analyzePreset),
		Align:   analyzeAlign,
		Checker: loadChecker(),
	})
	printReport(res)
}

func printReport(res *analysis.Result) {
	fmt.Printf("record notes: %v total, %v valid\n", res.RecordCounts.Total, res.RecordCounts.Valid)
	fmt.Printf("replay notes: %v total, %v valid\n", res.ReplayCounts.Total, res.ReplayCounts.Valid)
	for reason, count := range res.RecordCounts.Reasons {
		fmt.Printf("  record filtered (%v): %v\n", reason, count)
	}
	for reason, count := range res.ReplayCounts.Reasons {
		fmt.Printf("  replay filtered (%v): %v\n", reason, count)
	}

	fmt.Printf("global offset: %.2fms\n", res.GlobalOffset/10)
	fmt.Printf("matched pairs: %v\n", len(res.Pairs))
	fmt.Printf("drops: %v, multis: %v, non-sounding: %v\n", len(res.Drops), len(res.Multis), len(res.NonSounding))

	m := res.Metrics
	fmt.Printf("mean error: %.2fms\n", m.Mean/10)
	fmt.Printf("mean absolute error: %.2fms\n", m.MAE/10)
	fmt.Printf("mean squared error: %.2fms^2\n", m.MSE/100)
	fmt.Printf("std of absolute error: %.2fms\n", m.Std/10)
	fmt.Printf("global average delay: %.2fms\n", res.GlobalDelay/10)

	for _, i := range sortedFailureKeys(res.Failures) {
		fmt.Printf("unmatched record note %v: %v\n", i, res.Failures[i])
	}
}

func sortedFailureKeys(failures map[int]string) []int {
	keys := make([]int, 0, len(failures))
	for k := range failures {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
