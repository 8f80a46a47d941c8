package main

import (
	"fmt"
	"os"

	"github.com/masa1023/site-concierge/cmd/site-concierge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
