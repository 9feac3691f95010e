package stages

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/gogpu/naga"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

const commonShader = "common.wgsl"

// ShaderSource returns the WGSL for a stage shader with the shared
// bindings and lattice helpers prepended.
func ShaderSource(name string) (string, error) {
	common, err := shaderFS.ReadFile("shaders/" + commonShader)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", commonShader, err)
	}
	body, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		return "", fmt.Errorf("reading shader %s: %w", name, err)
	}
	return string(common) + "\n" + string(body), nil
}

// ShaderNames lists the stage shaders, sorted.
func ShaderNames() []string {
	entries, _ := fs.ReadDir(shaderFS, "shaders")
	var names []string
	for _, e := range entries {
		if e.Name() != commonShader {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// CompileSPIRV compiles a stage shader to SPIR-V words.
func CompileSPIRV(name string) ([]uint32, error) {
	src, err := ShaderSource(name)
	if err != nil {
		return nil, err
	}
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
