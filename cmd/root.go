package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "meterdetect",
	Short: "Metrical structure detection for MIDI",
	Long:  `Infers time signature, sub beat granularity, and anacrusis of MIDI performances using a rhythmic tree grammar.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
