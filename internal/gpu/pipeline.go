package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ShaderSource is validated WGSL plus the entry points to bind.
type ShaderSource struct {
	Label         string
	Code          string
	VertexEntry   string
	FragmentEntry string
}

// Pipeline bundles the empty pipeline layout (no bind groups, vertex input
// only) with the compiled render pipeline that draws the triangle.
type Pipeline struct {
	device   hal.Device
	shader   hal.ShaderModule
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
	format   gputypes.TextureFormat
}

// NewPipeline compiles src and builds a render pipeline targeting format.
//
// Fixed-function state follows the conventional Direct3D defaults: solid
// fill, clockwise front faces with back-face culling, no depth or stencil,
// opaque replace blending, one sample.
func NewPipeline(device hal.Device, src ShaderSource, format gputypes.TextureFormat) (*Pipeline, error) {
	if src.Code == "" {
		return nil, fmt.Errorf("triangle shader source is empty")
	}
	p := &Pipeline{device: device, format: format}
	if err := p.create(src); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("gpu: render pipeline created",
		"shader", src.Label, "format", format,
		"vs", src.VertexEntry, "fs", src.FragmentEntry)
	return p, nil
}

func (p *Pipeline) create(src ShaderSource) error {
	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "triangle_root_layout",
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.layout = layout

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  src.Label,
		Source: hal.ShaderSource{WGSL: src.Code},
	})
	if err != nil {
		return fmt.Errorf("compile triangle shader: %w", err)
	}
	p.shader = shader

	blend := gputypes.BlendStateReplace()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "triangle_pipeline",
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: src.VertexEntry,
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: src.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create triangle pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// Format returns the color target format the pipeline was built for.
func (p *Pipeline) Format() gputypes.TextureFormat { return p.format }

// Destroy releases pipeline resources in reverse creation order.
func (p *Pipeline) Destroy() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
}
