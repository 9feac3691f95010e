// Shader debug tool - prints the compute dispatch plan for one step and
// compiles each stage shader to SPIR-V for inspection.
//
// Usage: go run ./cmd/shaderdebug -config config.yaml -out spirv/
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/renderer"
	"github.com/pthm-cable/flip/sim"
	"github.com/pthm-cable/flip/stages"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outDir := flag.String("out", "", "Directory for .spv (and .wgsl) files (empty = plan only)")
	writeWGSL := flag.Bool("wgsl", false, "Also write the composed WGSL next to each .spv")
	enableScatter := flag.Bool("enable-scatter", true, "Include the scatter stage in the plan")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Pipeline.EnableScatter = *enableScatter

	s, err := sim.New(cfg, sim.Options{Seed: 1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build simulation: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	particles := renderer.PackParticles(s.Particles(), nil)
	vertices, markers := renderer.PackGrid(s.Grid(), nil, nil)
	fmt.Printf("Particle buffer: %d particles, %d bytes (stride %d)\n",
		s.Particles().Len(), len(particles)*4, renderer.ParticleStride*4)
	fmt.Printf("Grid buffer:     %d cells, %d bytes (stride %d) + %d marker bytes\n",
		len(s.Grid().Cells), len(vertices)*4, renderer.GridStride*4, len(markers)*4)
	fmt.Println()

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outDir, err)
			os.Exit(1)
		}
	}

	failed := false
	for i, d := range s.Dispatches() {
		fmt.Printf("%d. %-12s %-18s extent %v (%d invocations)\n", i+1, d.Stage, d.Shader, d.Extent, d.Invocations())
		for _, u := range d.Uniforms {
			fmt.Printf("     %-16s %v\n", u.Name, u.Value)
		}

		words, err := stages.CompileSPIRV(d.Shader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "     compile failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("     SPIR-V: %d words\n", len(words))

		if *outDir == "" {
			continue
		}
		base := filepath.Join(*outDir, strings.TrimSuffix(d.Shader, ".wgsl"))
		if err := writeSPIRV(base+".spv", words); err != nil {
			fmt.Fprintf(os.Stderr, "     %v\n", err)
			failed = true
		}
		if *writeWGSL {
			src, err := d.Source()
			if err == nil {
				err = os.WriteFile(base+".wgsl", []byte(src), 0644)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "     writing wgsl: %v\n", err)
				failed = true
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

// writeSPIRV writes words as a little-endian SPIR-V module.
func writeSPIRV(path string, words []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, words); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
