package splitframe

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga"
	"github.com/spf13/afero"
)

// Fixed shader locations, relative to the working directory.
const (
	DefaultVertexShader   = "shaders/band.vert.wgsl"
	DefaultFragmentShader = "shaders/band.frag.wgsl"
)

// LoadShaders reads the vertex and fragment stages from fs. Files ending in
// .wgsl are compiled to SPIR-V; any other file is read as little-endian
// SPIR-V words. Failures are returned as *SetupError wrapping ErrShaderLoad.
func LoadShaders(fs afero.Fs, vertPath, fragPath string) (ShaderSet, error) {
	vert, err := loadShader(fs, vertPath)
	if err != nil {
		return ShaderSet{}, err
	}
	frag, err := loadShader(fs, fragPath)
	if err != nil {
		return ShaderSet{}, err
	}
	return ShaderSet{Vertex: vert, Fragment: frag}, nil
}

func loadShader(fs afero.Fs, path string) ([]uint32, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, NewSetupError("ReadFile("+path+")", StatusErrorInitializationFailed,
			fmt.Errorf("%w: %w", ErrShaderLoad, err))
	}

	if strings.EqualFold(filepath.Ext(path), ".wgsl") {
		data, err = naga.Compile(string(data))
		if err != nil {
			return nil, NewSetupError("naga.Compile("+path+")", StatusErrorInitializationFailed,
				fmt.Errorf("%w: %w", ErrShaderLoad, err))
		}
	}

	words, err := SPIRVWords(data)
	if err != nil {
		return nil, NewSetupError("SPIRVWords("+path+")", StatusErrorInitializationFailed,
			fmt.Errorf("%w: %w", ErrShaderLoad, err))
	}
	return words, nil
}

// SPIRVWords converts SPIR-V bytes to 32-bit words. SPIR-V is little-endian
// and the byte length must be a non-zero multiple of 4.
func SPIRVWords(data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid SPIR-V length %d", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}
