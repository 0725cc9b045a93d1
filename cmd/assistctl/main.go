package main

import (
	"fmt"
	"os"

	"ai-topic-assist-be/internal/assistctl"
)

// Version information (set at build time)
var version = "dev"

func main() {
	if err := assistctl.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
