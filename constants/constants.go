package constants

import "os"

func GetGrammarPath() string {
	path := os.Getenv("GRAMMAR_PATH")
	if path != "" {
		return path
	}
	return "./grammar.dat"
}

func GetOutputDir() string {
	path := os.Getenv("OUTPUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

const AnnotationTable = "meterdetect-annotations"

// noisy files in the wild declare 0/0; treat anything odd as common time
const DefaultNumerator = 4
const DefaultDenominator = 4
