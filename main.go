package main

import (
	"os"

	"github.com/intelligrit/stk-captions/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
