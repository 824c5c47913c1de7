package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Shaders is the SPIR-V bytecode the graphics pipeline is built from.
type Shaders struct {
	Vertex   []uint32
	Fragment []uint32
}

// Pipeline is a graphics pipeline with its viewport and scissor baked for
// one surface extent.
type Pipeline struct {
	driver core1_0.CoreDeviceDriver
	handle core1_0.Pipeline
	extent render.Extent
}

func (c *DeviceContext) createShaderModule(code []uint32) (core1_0.ShaderModule, error) {
	module, _, err := c.deviceDriver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	return module, err
}

// createPipeline builds a pipeline against the surface's render pass. The
// shader modules live only as long as the build.
func (c *DeviceContext) createPipeline(surface *Surface, layout core1_0.PipelineLayout, cache *PipelineCache, shaders Shaders) (*Pipeline, error) {
	vertShader, err := c.createShaderModule(shaders.Vertex)
	if err != nil {
		return nil, errors.Wrap(err, "create vertex shader module")
	}
	defer c.deviceDriver.DestroyShaderModule(vertShader, nil)

	fragShader, err := c.createShaderModule(shaders.Fragment)
	if err != nil {
		return nil, errors.Wrap(err, "create fragment shader module")
	}
	defer c.deviceDriver.DestroyShaderModule(fragShader, nil)

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions:   vertexBindingDescriptions(),
		VertexAttributeDescriptions: vertexAttributeDescriptions(),
	}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(surface.extent.Width),
				Height:   float32(surface.extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: surface.extent,
			},
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	depthStencil := &core1_0.PipelineDepthStencilStateCreateInfo{
		DepthTestEnable:  true,
		DepthWriteEnable: true,
		DepthCompareOp:   core1_0.CompareOpLess,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	start := hrtime.Now()
	pipelines, _, err := c.deviceDriver.CreateGraphicsPipelines(cache.Handle(), nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			DepthStencilState:  depthStencil,
			ColorBlendState:    colorBlend,
			Layout:             layout,
			RenderPass:         surface.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		driver: c.deviceDriver,
		handle: pipelines[0],
		extent: surface.Extent(),
	}
	render.Logger().Debug("graphics pipeline created", "extent", p.extent, "elapsed", hrtime.Since(start))

	return p, nil
}

func (p *Pipeline) Extent() render.Extent {
	return p.extent
}

func (p *Pipeline) Destroy() {
	if p.handle.Initialized() {
		p.driver.DestroyPipeline(p.handle, nil)
		p.handle = core1_0.Pipeline{}
	}
}
