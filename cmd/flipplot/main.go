// flipplot renders charts from a run's steps.csv.
//
// Usage: go run ./cmd/flipplot -run output/ -out output/plots
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	runDir := flag.String("run", "", "Run output directory containing steps.csv")
	outDir := flag.String("out", "", "Directory for PNG charts (default <run>/plots)")
	flag.Parse()

	if *runDir == "" {
		fmt.Fprintln(os.Stderr, "flipplot: -run is required")
		flag.Usage()
		os.Exit(2)
	}
	if *outDir == "" {
		*outDir = filepath.Join(*runDir, "plots")
	}

	steps, err := readSteps(filepath.Join(*runDir, "steps.csv"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "flipplot: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "flipplot: creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	for _, s := range charts {
		path := filepath.Join(*outDir, s.File)
		if err := s.Render(steps, path); err != nil {
			fmt.Fprintf(os.Stderr, "flipplot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d records)\n", path, len(steps))
	}
}
