package content

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

//go:generate glslc ../../Content/shaders/simple_shader.vert -o ../../Content/shaders/compiled/simple_shader.vert.spv
//go:generate glslc ../../Content/shaders/simple_shader.frag -o ../../Content/shaders/compiled/simple_shader.frag.spv

const spirvMagic = 0x07230203

// Bytecode reinterprets little-endian SPIR-V bytes as 32-bit words.
func Bytecode(b []byte) ([]uint32, error) {
	if len(b) < 20 || len(b)%4 != 0 {
		return nil, errors.Newf("spir-v module of %d bytes is not a whole number of words", len(b))
	}

	code := make([]uint32, len(b)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(b[i*4:])
	}

	if code[0] != spirvMagic {
		return nil, errors.Newf("bad spir-v magic %#08x", code[0])
	}
	return code, nil
}

func (r *Resolver) ReadShader(name string) ([]uint32, error) {
	data, err := r.ReadFile(name)
	if err != nil {
		return nil, err
	}

	code, err := Bytecode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	return code, nil
}
