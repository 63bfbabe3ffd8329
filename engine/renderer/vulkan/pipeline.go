package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/core"
)

// VulkanPipeline holds a pipeline and its layout.
type VulkanPipeline struct {
	Handle         vk.Pipeline
	PipelineLayout vk.PipelineLayout
}

type VulkanPipelineConfig struct {
	// The glyph render pass and the subpass this pipeline runs in.
	Renderpass *VulkanRenderpass
	Subpass    uint32
	// Vertex input bindings and attributes. The overlap pipeline binds
	// the glyph vertex stream and the per-instance stream; the
	// fullscreen pipelines bind nothing.
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
	// Descriptor set layouts, shared across the pass stages.
	DescriptorSetLayouts []vk.DescriptorSetLayout
	// Compiled shader stages.
	Stages []vk.PipelineShaderStageCreateInfo
	// The initial viewport and scissor.
	Viewport vk.Viewport
	Scissor  vk.Rect2D
	// Whether the subpass writes the color attachment. The overlap and
	// resolve subpasses are attachment-less; their fragment work goes
	// through storage buffer atomics only.
	ColorAttachment bool
	// Size in bytes of the shared push constant block, or zero.
	PushConstantSize uint32
}

func NewGraphicsPipeline(context *VulkanContext, config *VulkanPipelineConfig) (*VulkanPipeline, error) {
	outPipeline := &VulkanPipeline{}

	// Viewport state
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{config.Viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{config.Scissor},
	}
	viewportState.Deref()

	// Rasterizer. Glyph triangles carry no consistent winding (the
	// parity fill cancels overlaps), so culling must stay off.
	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}
	rasterizerCreateInfo.Deref()

	// Multisampling stays off; anti-aliasing comes from the coverage
	// accumulation, not MSAA.
	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		PSampleMask:           nil,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}
	multisamplingCreateInfo.Deref()

	// No depth or stencil anywhere in the glyph pass.
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   vk.False,
		DepthWriteEnable:  vk.False,
		StencilTestEnable: vk.False,
	}
	depthStencil.Deref()

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 0,
		PAttachments:    nil,
	}
	if config.ColorAttachment {
		// The composite stage computes the final blend against the
		// background itself and writes an opaque result.
		colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
			BlendEnable: vk.False,
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
				vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
		}
		colorBlendAttachmentState.Deref()
		colorBlendStateCreateInfo.AttachmentCount = 1
		colorBlendStateCreateInfo.PAttachments = []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState}
	}
	colorBlendStateCreateInfo.Deref()

	// Dynamic state
	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}

	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	dynamicStateCreateInfo.Deref()

	// Vertex input
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(config.Bindings)),
		PVertexBindingDescriptions:      config.Bindings,
		VertexAttributeDescriptionCount: uint32(len(config.Attributes)),
		PVertexAttributeDescriptions:    config.Attributes,
	}
	vertexInputInfo.Deref()

	// Input assembly
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	inputAssembly.Deref()

	// Pipeline layout
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(config.DescriptorSetLayouts)),
		PSetLayouts:            config.DescriptorSetLayouts,
		PushConstantRangeCount: 0,
		PPushConstantRanges:    nil,
	}

	if config.PushConstantSize > 0 {
		pushRange := vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			Offset:     0,
			Size:       config.PushConstantSize,
		}
		pushRange.Deref()
		pipelineLayoutCreateInfo.PushConstantRangeCount = 1
		pipelineLayoutCreateInfo.PPushConstantRanges = []vk.PushConstantRange{pushRange}
	}
	pipelineLayoutCreateInfo.Deref()

	// Create the pipeline layout.
	var pPipelineLayout vk.PipelineLayout

	if err := lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreatePipelineLayout(
			context.Device.LogicalDevice,
			&pipelineLayoutCreateInfo,
			context.Allocator,
			&pPipelineLayout)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreatePipelineLayout failed with %s", VulkanResultString(result, true))
		}
		outPipeline.PipelineLayout = pPipelineLayout
		return nil
	}); err != nil {
		return nil, err
	}

	// Pipeline create
	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(config.Stages)),
		PStages:             config.Stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		PTessellationState:  nil,
		Layout:              outPipeline.PipelineLayout,
		RenderPass:          config.Renderpass.Handle,
		Subpass:             config.Subpass,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
	pipelineCreateInfo.Deref()

	pPipelines := make([]vk.Pipeline, 1)

	if err := lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreateGraphicsPipelines(
			context.Device.LogicalDevice,
			vk.NullPipelineCache,
			1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
			context.Allocator,
			pPipelines)

		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	outPipeline.Handle = pPipelines[0]

	core.LogDebug("Graphics pipeline created for subpass %d.", config.Subpass)
	return outPipeline, nil
}

func (pipeline *VulkanPipeline) Destroy(context *VulkanContext) error {
	// Destroy pipeline
	if pipeline.Handle != nil {
		if err := lockPool.SafeCall(PipelineManagement, func() error {
			vk.DestroyPipeline(context.Device.LogicalDevice, pipeline.Handle, context.Allocator)
			pipeline.Handle = nil
			return nil
		}); err != nil {
			return err
		}
	}
	// Destroy layout
	if pipeline.PipelineLayout != nil {
		if err := lockPool.SafeCall(PipelineManagement, func() error {
			vk.DestroyPipelineLayout(context.Device.LogicalDevice, pipeline.PipelineLayout, context.Allocator)
			pipeline.PipelineLayout = nil
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (pipeline *VulkanPipeline) Bind(commandBuffer *VulkanCommandBuffer, bindPoint vk.PipelineBindPoint) error {
	return lockPool.SafeCall(CommandBufferManagement, func() error {
		vk.CmdBindPipeline(commandBuffer.Handle, bindPoint, pipeline.Handle)
		return nil
	})
}
