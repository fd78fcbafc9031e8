package main

import (
	"fmt"
	"os"

	"github.com/gzhole/skillhook/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[skillhook] error: %v\n", err)
		os.Exit(1)
	}
}
