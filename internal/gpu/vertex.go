package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// vertexStride is the byte stride per vertex.
// Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0)
//	color    (vec3<f32>) = 12 bytes (location 1)
//
// Total = 24 bytes per vertex.
const vertexStride = 24

// Vertex is one corner of the triangle in clip space with a linear RGB color.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

// TriangleVertices is the static triangle: red top, green bottom right,
// blue bottom left.
var TriangleVertices = [3]Vertex{
	{Position: [3]float32{0.0, 0.5, 0.0}, Color: [3]float32{1, 0, 0}},
	{Position: [3]float32{0.5, -0.5, 0.0}, Color: [3]float32{0, 1, 0}},
	{Position: [3]float32{-0.5, -0.5, 0.0}, Color: [3]float32{0, 0, 1}},
}

// vertexLayout describes Vertex to the input assembler.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			},
		},
	}
}

// encodeVertices packs vertices into little-endian bytes matching vertexLayout.
func encodeVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*vertexStride)
	off := 0
	for i := range vertices {
		for _, f := range vertices[i].Position {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
		for _, f := range vertices[i].Color {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf
}
