package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/core"
)

// Subpass indices inside the glyph render pass. Overlap accumulates the
// per-pixel counts, resolve folds them into the glyph layer, composite
// writes the swapchain image. Cleanup is not a subpass; the accumulator
// is zeroed with a transfer fill before the pass begins.
const (
	SubpassOverlap uint32 = iota
	SubpassResolve
	SubpassComposite
)

type VulkanRenderpass struct {
	Handle     vk.RenderPass
	X, Y, W, H float32
	R, G, B, A float32
}

// RenderpassCreate builds the three-subpass glyph pass. Only the
// composite subpass touches the color attachment; overlap and resolve
// are attachment-less and communicate through storage buffers, so the
// inter-subpass dependencies carry fragment-shader write to read
// visibility rather than attachment transitions.
func RenderpassCreate(context *VulkanContext, x, y, w, h, r, g, b, a float32) (*VulkanRenderpass, error) {
	outRenderpass := &VulkanRenderpass{
		X: x, Y: y, W: w, H: h,
		R: r, G: g, B: b, A: a,
	}

	colorAttachment := vk.AttachmentDescription{
		Format:         context.Swapchain.ImageFormat.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
		Flags:          0,
	}
	colorAttachment.Deref()

	colorAttachmentReference := []vk.AttachmentReference{
		{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		},
	}

	overlapSubpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 0,
		PColorAttachments:    nil,
	}
	overlapSubpass.Deref()

	resolveSubpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 0,
		PColorAttachments:    nil,
	}
	resolveSubpass.Deref()

	compositeSubpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorAttachmentReference,
	}
	compositeSubpass.Deref()

	fragmentStage := vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	shaderWrite := vk.AccessFlags(vk.AccessShaderWriteBit)
	shaderReadWrite := vk.AccessFlags(vk.AccessShaderReadBit) | vk.AccessFlags(vk.AccessShaderWriteBit)

	dependencies := []vk.SubpassDependency{
		// Cleanup fill of the accumulator must land before the overlap
		// fragments start adding to it.
		{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    SubpassOverlap,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessTransferWriteBit),
			DstStageMask:  fragmentStage,
			DstAccessMask: shaderReadWrite,
		},
		// Every overlap atomic add must be visible before resolve reads
		// the counts.
		{
			SrcSubpass:    SubpassOverlap,
			DstSubpass:    SubpassResolve,
			SrcStageMask:  fragmentStage,
			SrcAccessMask: shaderWrite,
			DstStageMask:  fragmentStage,
			DstAccessMask: shaderReadWrite,
		},
		// The resolved glyph layer must be complete before composition
		// samples it.
		{
			SrcSubpass:    SubpassResolve,
			DstSubpass:    SubpassComposite,
			SrcStageMask:  fragmentStage,
			SrcAccessMask: shaderWrite,
			DstStageMask:  fragmentStage,
			DstAccessMask: vk.AccessFlags(vk.AccessShaderReadBit),
		},
	}
	for i := range dependencies {
		dependencies[i].Deref()
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    3,
		PSubpasses:      []vk.SubpassDescription{overlapSubpass, resolveSubpass, compositeSubpass},
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
	renderpassCreateInfo.Deref()

	var pRenderPass vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo, context.Allocator, &pRenderPass); res != vk.Success {
		err := fmt.Errorf("failed to create render pass: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outRenderpass.Handle = pRenderPass
	return outRenderpass, nil
}

func (vr *VulkanRenderpass) RenderpassDestroy(context *VulkanContext) {
	if vr.Handle != nil {
		vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
		vr.Handle = nil
	}
}

func (vr *VulkanRenderpass) RenderpassBegin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{
				X: int32(vr.X),
				Y: int32(vr.Y),
			},
			Extent: vk.Extent2D{
				Width:  uint32(vr.W),
				Height: uint32(vr.H),
			},
		},
	}
	beginInfo.Deref()

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor([]float32{vr.R, vr.G, vr.B, vr.A})

	beginInfo.ClearValueCount = 1
	beginInfo.PClearValues = clearValues

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

// RenderpassNext advances to the following subpass in the declared
// order.
func (vr *VulkanRenderpass) RenderpassNext(commandBuffer *VulkanCommandBuffer) {
	vk.CmdNextSubpass(commandBuffer.Handle, vk.SubpassContentsInline)
}

func (vr *VulkanRenderpass) RenderpassEnd(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
