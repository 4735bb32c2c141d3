package main

import (
	"github.com/jsphweid/meterdetect/cmd"
)

func main() {
	cmd.Execute()
}
