package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/util"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <grammar-file>",
	Short: "Inspects a trained grammar",
	Long:  `Inspects a trained grammar`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	f := util.OpenFileOrPanic(path)
	defer f.Close()
	grammar, err := lpcfg.Decode(f)
	if err != nil {
		panic("Could not decode grammar: " + err.Error())
	}

	fmt.Printf("trees: %v\n", len(grammar.Trees))
	for _, measure := range grammar.Measures() {
		count := 0
		for _, tree := range grammar.Trees {
			if tree.Measure() == measure {
				count++
			}
		}
		fmt.Printf("%v: %v trees\n", measure, count)
	}

	fmt.Printf("transition keys: %v\n", len(grammar.Probabilities.Transitions))
	fmt.Printf("head keys: %v\n", len(grammar.Probabilities.Heads))
	fmt.Printf("measure head keys: %v\n", len(grammar.Probabilities.MeasureHeads))
}
