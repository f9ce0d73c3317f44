package main

import (
	"fmt"
	"os"

	"github.com/hx-cli/hx"
	_ "github.com/mtibben/androiddnsfix" // make DNS resolution work on Android
)

func main() {
	exitCode, err := hx.Main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hx: error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
