package vulkan

import (
	"encoding/binary"
	"fmt"
	gomath "math"
	"path/filepath"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/platform"
	"github.com/vecglyph/vecglyph/engine/renderer"
)

// pushConstantSize is the byte size of the push block shared by every
// pass stage: view-projection mat4, background vec4, framebuffer
// extent, current tick, temporal frame count and the per-draw triangle
// kind.
const pushConstantSize uint32 = 112

// pushKindOffset is the byte offset of the per-draw kind word inside
// the push block.
const pushKindOffset uint32 = 96

// Backend drives the glyph passes on a Vulkan device. One frame is:
// cleanup (transfer fill of the accumulator), overlap (instanced glyph
// triangles adding counts and coverage atomically), resolve (parity
// fill into the glyph layer, temporal fold) and composite (glyph layer
// over the background onto the swapchain image).
type Backend struct {
	platform    *platform.Platform
	config      Config
	FrameNumber uint64
	context     *VulkanContext

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	// Per in-flight frame geometry streams, rewritten every frame.
	vertexBuffers   []*VulkanBuffer
	indexBuffers    []*VulkanBuffer
	instanceBuffers []*VulkanBuffer

	shaderStages []*VulkanShaderStage

	// The temporal history buffer must be zeroed before its first use
	// and after every reallocation.
	historyDirty bool

	initialized bool
	debug       bool
}

// Config carries the backend options resolved from the TOML config.
type Config struct {
	AppName string
	// TemporalFrames is how many prior frames' parity bits the resolve
	// stage folds in; zero disables temporal smoothing.
	TemporalFrames uint32
	VSync          bool
	// ShaderDir holds the compiled .spv modules.
	ShaderDir string
	Debug     bool
}

var _ renderer.Backend = (*Backend)(nil)

func New(p *platform.Platform, config Config) *Backend {
	if config.ShaderDir == "" {
		config.ShaderDir = filepath.Join("assets", "shaders")
	}
	return &Backend{
		platform:    p,
		config:      config,
		FrameNumber: 0,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
			Device: &VulkanDevice{
				GraphicsQueueIndex: -1,
				PresentQueueIndex:  -1,
				TransferQueueIndex: -1,
				SwapchainSupport:   &VulkanSwapchainSupportInfo{},
			},
		},
		debug: config.Debug,
	}
}

func (vr *Backend) Initialize(width, height uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("vkGetInstanceProcAddress is nil; no Vulkan loader found")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vulkan: %s", err)
		return err
	}

	vr.context.Allocator = nil
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.AppName),
		PEngineName:        VulkanSafeString("vecglyph"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetRequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		core.LogDebug("Required extensions:")
		for i := range requiredExtensions {
			core.LogDebug("  %s", requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers are only enabled on debug builds.
	requiredValidationLayerNames := []string{}
	if vr.debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers")
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers")
		}

		for i := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if requiredValidationLayerNames[i] == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				core.LogWarn("Validation layer %s is missing, continuing without validation.", requiredValidationLayerNames[i])
				requiredValidationLayerNames = nil
				break
			}
		}
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create the Vulkan instance: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Vulkan instance created.")

	// Debugger
	if vr.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
			PNext:       nil,
		}

		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vkCreateDebugReportCallback failed with %s", err)
			return err
		}
		vr.context.debugMessenger = dbg

		core.LogDebug("Vulkan debugger created.")
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateVulkanSurface(vr.context.Instance)
	if err != nil {
		core.LogError("failed to create platform surface: %s", err)
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		core.LogError("failed to create device: %s", err)
		return err
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, vr.config.VSync)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.0, 1.0)
	if err != nil {
		return err
	}
	vr.context.GlyphRenderpass = rp

	// Swapchain framebuffers.
	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.GlyphRenderpass); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	// Storage targets, descriptors, geometry streams, pipelines.
	if err := vr.allocateTargets(vr.context.FramebufferWidth, vr.context.FramebufferHeight); err != nil {
		return err
	}

	d, err := NewDescriptors(vr.context)
	if err != nil {
		return err
	}
	vr.context.Descriptors = d
	vr.context.Descriptors.BindBuffers(vr.context, vr.context.Accumulator, vr.context.GlyphLayer, vr.context.History)

	if err := vr.createGeometryBuffers(); err != nil {
		return err
	}

	if err := vr.createPipelines(); err != nil {
		return err
	}

	vr.initialized = true
	core.LogInfo("Vulkan renderer initialized successfully.")

	return nil
}

func (vr *Backend) Shutdown() error {
	if !vr.initialized {
		return nil
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.

	for _, p := range []*VulkanPipeline{vr.context.OverlapPipeline, vr.context.ResolvePipeline, vr.context.CompositePipeline} {
		if p != nil {
			p.Destroy(vr.context)
		}
	}
	vr.context.OverlapPipeline = nil
	vr.context.ResolvePipeline = nil
	vr.context.CompositePipeline = nil

	for _, s := range vr.shaderStages {
		s.Destroy(vr.context)
	}
	vr.shaderStages = nil

	for i := range vr.vertexBuffers {
		vr.vertexBuffers[i].Destroy(vr.context)
		vr.indexBuffers[i].Destroy(vr.context)
		vr.instanceBuffers[i].Destroy(vr.context)
	}
	vr.vertexBuffers = nil
	vr.indexBuffers = nil
	vr.instanceBuffers = nil

	if vr.context.Descriptors != nil {
		vr.context.Descriptors.Destroy(vr.context)
		vr.context.Descriptors = nil
	}

	vr.destroyTargets()

	// Sync objects
	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(
				vr.context.Device.LogicalDevice,
				vr.context.ImageAvailableSemaphores[i],
				vr.context.Allocator)
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(
				vr.context.Device.LogicalDevice,
				vr.context.QueueCompleteSemaphores[i],
				vr.context.Allocator)
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
	}

	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.ImagesInFlight = nil

	// Command buffers
	for i := range vr.context.GraphicsCommandBuffers {
		if vr.context.GraphicsCommandBuffers[i] != nil && vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	// Framebuffers
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	vr.context.GlyphRenderpass.RenderpassDestroy(vr.context)

	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)

	vr.initialized = false
	return nil
}

// Resize records the new framebuffer size. The swapchain and the
// accumulator family are recreated lazily at the start of the next
// frame; cached glyph meshes are resolution independent and survive.
func (vr *Backend) Resize(width, height uint32) error {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan backend resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

// Render submits one frame: cleanup, overlap, resolve, composite, in
// that order, then presents. A core.ErrSwapchainOutOfDate return means
// the frame was skipped while the swapchain caught up with a resize;
// core.ErrDeviceLost is fatal to the session.
func (vr *Backend) Render(packet *renderer.FramePacket) error {
	if !vr.initialized {
		return fmt.Errorf("vulkan backend not initialized")
	}
	ctx := vr.context
	device := ctx.Device

	// Check if recreating swap chain and boot out.
	if ctx.RecreatingSwapchain {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("device wait idle failed: %s", VulkanResultString(result, true))
			core.LogError(err.Error())
			return err
		}
		return core.ErrSwapchainOutOfDate
	}

	// If the framebuffer has been resized, a new swapchain and new
	// accumulator targets are needed before anything can be drawn.
	if ctx.FramebufferSizeGeneration != ctx.FramebufferSizeLastGeneration {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("device wait idle failed: %s", VulkanResultString(result, true))
			core.LogError(err.Error())
			return err
		}

		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrSwapchainOutOfDate
	}

	// Wait for the execution of the current frame to complete.
	if err := ctx.InFlightFences[ctx.CurrentFrame].FenceWait(ctx, gomath.MaxUint64); err != nil {
		return err
	}

	imageIndex, err := ctx.Swapchain.SwapchainAcquireNextImageIndex(ctx, gomath.MaxUint64, ctx.ImageAvailableSemaphores[ctx.CurrentFrame], vk.NullFence)
	if err != nil {
		if err == core.ErrSwapchainOutOfDate {
			vr.recreateSwapchain()
		}
		return err
	}
	ctx.ImageIndex = imageIndex

	// Make sure the previous frame using this image is done before the
	// image's command buffer is re-recorded.
	if ctx.ImagesInFlight[ctx.ImageIndex] != nil {
		if err := ctx.ImagesInFlight[ctx.ImageIndex].FenceWait(ctx, gomath.MaxUint64); err != nil {
			return err
		}
	}

	// Upload this frame's geometry.
	stream := BuildGeometryStream(packet)
	if err := vr.uploadGeometry(stream); err != nil {
		return err
	}

	commandBuffer := ctx.GraphicsCommandBuffers[ctx.ImageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	// Cleanup stage: zero the accumulator. The render pass dependency
	// chain keeps the overlap fragments from racing the fill.
	ctx.Accumulator.Fill(commandBuffer, 0)
	if vr.historyDirty {
		ctx.History.Fill(commandBuffer, 0)
		vr.historyDirty = false
	}

	// Dynamic state. Negative-height viewport flips clip space so the
	// screen mapping matches the software backend.
	viewport := vk.Viewport{
		X:        0.0,
		Y:        float32(ctx.FramebufferHeight),
		Width:    float32(ctx.FramebufferWidth),
		Height:   -float32(ctx.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  ctx.FramebufferWidth,
			Height: ctx.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	rp := ctx.GlyphRenderpass
	rp.W = float32(ctx.FramebufferWidth)
	rp.H = float32(ctx.FramebufferHeight)
	rp.R = packet.Background[0]
	rp.G = packet.Background[1]
	rp.B = packet.Background[2]
	rp.A = 1.0

	rp.RenderpassBegin(commandBuffer, ctx.Swapchain.Framebuffers[ctx.ImageIndex].Handle)

	push := vr.buildPushConstants(packet)

	// Overlap stage: instanced glyph triangles accumulating counts and
	// coverage.
	ctx.OverlapPipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics,
		ctx.OverlapPipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{ctx.Descriptors.Set}, 0, nil)
	vk.CmdPushConstants(commandBuffer.Handle, ctx.OverlapPipeline.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit)|vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		0, pushConstantSize, unsafe.Pointer(&push[0]))

	if !stream.Empty() {
		frame := ctx.CurrentFrame
		vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 2,
			[]vk.Buffer{vr.vertexBuffers[frame].Handle, vr.instanceBuffers[frame].Handle},
			[]vk.DeviceSize{0, 0})
		vk.CmdBindIndexBuffer(commandBuffer.Handle, vr.indexBuffers[frame].Handle, 0, vk.IndexTypeUint32)

		for _, draw := range stream.Draws {
			kind := uint32(draw.Kind)
			vk.CmdPushConstants(commandBuffer.Handle, ctx.OverlapPipeline.PipelineLayout,
				vk.ShaderStageFlags(vk.ShaderStageVertexBit)|vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
				pushKindOffset, 4, unsafe.Pointer(&kind))
			vk.CmdDrawIndexed(commandBuffer.Handle, draw.IndexCount, draw.InstanceCount,
				draw.IndexFirst, draw.VertexOffset, draw.InstanceFirst)
		}
	}

	// Resolve stage: one fullscreen triangle folding counts, coverage
	// and temporal history into the glyph layer.
	rp.RenderpassNext(commandBuffer)
	ctx.ResolvePipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics,
		ctx.ResolvePipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{ctx.Descriptors.Set}, 0, nil)
	vk.CmdPushConstants(commandBuffer.Handle, ctx.ResolvePipeline.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit)|vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		0, pushConstantSize, unsafe.Pointer(&push[0]))
	vk.CmdDraw(commandBuffer.Handle, 3, 1, 0, 0)

	// Composite stage: glyph layer over the cleared background.
	rp.RenderpassNext(commandBuffer)
	ctx.CompositePipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics,
		ctx.CompositePipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{ctx.Descriptors.Set}, 0, nil)
	vk.CmdPushConstants(commandBuffer.Handle, ctx.CompositePipeline.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit)|vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		0, pushConstantSize, unsafe.Pointer(&push[0]))
	vk.CmdDraw(commandBuffer.Handle, 3, 1, 0, 0)

	rp.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Mark the image fence as in-use by this frame.
	ctx.ImagesInFlight[ctx.ImageIndex] = ctx.InFlightFences[ctx.CurrentFrame]
	if err := ctx.InFlightFences[ctx.CurrentFrame].FenceReset(ctx); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{ctx.QueueCompleteSemaphores[ctx.CurrentFrame]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{ctx.ImageAvailableSemaphores[ctx.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if err := lockPool.SafeCall(QueueManagement, func() error {
		result := vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, ctx.InFlightFences[ctx.CurrentFrame].Handle)
		switch {
		case result == vk.ErrorDeviceLost:
			return core.ErrDeviceLost
		case result != vk.Success:
			err := fmt.Errorf("vkQueueSubmit failed: %s", VulkanResultString(result, true))
			core.LogError(err.Error())
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	commandBuffer.UpdateSubmitted()

	completeSemaphore := ctx.QueueCompleteSemaphores[ctx.CurrentFrame]
	if err := ctx.Swapchain.SwapchainPresent(ctx, device.PresentQueue, completeSemaphore, ctx.ImageIndex); err != nil {
		if err == core.ErrSwapchainOutOfDate {
			vr.recreateSwapchain()
		}
		return err
	}

	vr.FrameNumber++
	return nil
}

// buildPushConstants packs the shared push block. Layout mirrors the
// GLSL declaration: mat4 at 0, background vec4 at 64, uvec2 extent at
// 80, now at 88, temporal frame count at 92, draw kind at 96.
func (vr *Backend) buildPushConstants(packet *renderer.FramePacket) []byte {
	push := make([]byte, pushConstantSize)
	for i, f := range packet.ViewProjection.Data {
		binary.LittleEndian.PutUint32(push[i*4:], gomath.Float32bits(f))
	}
	for i, f := range packet.Background {
		binary.LittleEndian.PutUint32(push[64+i*4:], gomath.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(push[76:], gomath.Float32bits(1.0))
	binary.LittleEndian.PutUint32(push[80:], vr.context.FramebufferWidth)
	binary.LittleEndian.PutUint32(push[84:], vr.context.FramebufferHeight)
	binary.LittleEndian.PutUint32(push[88:], packet.Now)
	binary.LittleEndian.PutUint32(push[92:], vr.config.TemporalFrames)
	return push
}

// uploadGeometry rewrites the current frame's host-visible streams,
// growing a buffer when the frame outgrows it.
func (vr *Backend) uploadGeometry(stream *GeometryStream) error {
	if stream.Empty() {
		return nil
	}
	frame := vr.context.CurrentFrame

	var err error
	if vr.vertexBuffers[frame], err = vr.ensureCapacity(vr.vertexBuffers[frame], uint64(len(stream.Vertices)), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)); err != nil {
		return err
	}
	if vr.indexBuffers[frame], err = vr.ensureCapacity(vr.indexBuffers[frame], uint64(len(stream.Indices)), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)); err != nil {
		return err
	}
	if vr.instanceBuffers[frame], err = vr.ensureCapacity(vr.instanceBuffers[frame], uint64(len(stream.Instances)), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)); err != nil {
		return err
	}

	if err := vr.vertexBuffers[frame].LoadData(vr.context, 0, stream.Vertices); err != nil {
		return err
	}
	if err := vr.indexBuffers[frame].LoadData(vr.context, 0, stream.Indices); err != nil {
		return err
	}
	return vr.instanceBuffers[frame].LoadData(vr.context, 0, stream.Instances)
}

func (vr *Backend) ensureCapacity(buf *VulkanBuffer, needed uint64, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	if uint64(buf.Size) >= needed {
		return buf, nil
	}
	newSize := uint64(buf.Size)
	for newSize < needed {
		newSize *= 2
	}
	core.LogDebug("growing geometry buffer from %d to %d bytes", buf.Size, newSize)
	buf.Destroy(vr.context)
	return NewBuffer(vr.context, vk.DeviceSize(newSize), usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
}

func (vr *Backend) createCommandBuffers() error {
	if len(vr.context.GraphicsCommandBuffers) == 0 {
		vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.context.Swapchain.ImageCount)
	}
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		if vr.context.GraphicsCommandBuffers[i] != nil && vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}

	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *Backend) createSyncObjects() error {
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.InFlightFences = make([]*VulkanFence, vr.context.Swapchain.MaxFramesInFlight)

	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}

		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create image-available semaphore")
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create queue-complete semaphore")
		}

		// Create the fence in a signaled state, indicating that the
		// first frame has already been "rendered".
		f, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = f
	}

	// Images-in-flight fences do not yet exist; they are owned by the
	// in-flight list above.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)
	return nil
}

// allocateTargets creates the framebuffer-sized storage buffers.
func (vr *Backend) allocateTargets(width, height uint32) error {
	pixels := uint64(width) * uint64(height)
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	storage := vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit) | vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)

	var err error
	if vr.context.Accumulator, err = NewBuffer(vr.context, vk.DeviceSize(pixels*uint64(AccumWordsPerPixel)*4), storage, deviceLocal); err != nil {
		return err
	}
	if vr.context.GlyphLayer, err = NewBuffer(vr.context, vk.DeviceSize(pixels*uint64(LayerWordsPerPixel)*4), storage, deviceLocal); err != nil {
		return err
	}
	if vr.context.History, err = NewBuffer(vr.context, vk.DeviceSize(pixels*uint64(HistoryWordsPerPixel)*4), storage, deviceLocal); err != nil {
		return err
	}
	// Temporal history restarts from scratch at the new size.
	vr.historyDirty = true
	return nil
}

func (vr *Backend) destroyTargets() {
	for _, b := range []*VulkanBuffer{vr.context.Accumulator, vr.context.GlyphLayer, vr.context.History} {
		if b != nil {
			b.Destroy(vr.context)
		}
	}
	vr.context.Accumulator = nil
	vr.context.GlyphLayer = nil
	vr.context.History = nil
}

func (vr *Backend) createGeometryBuffers() error {
	count := int(vr.context.Swapchain.MaxFramesInFlight)
	vr.vertexBuffers = make([]*VulkanBuffer, count)
	vr.indexBuffers = make([]*VulkanBuffer, count)
	vr.instanceBuffers = make([]*VulkanBuffer, count)

	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	var err error
	for i := 0; i < count; i++ {
		if vr.vertexBuffers[i], err = NewBuffer(vr.context, vk.DeviceSize(InitialVertexBufferSize), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), hostVisible); err != nil {
			return err
		}
		if vr.indexBuffers[i], err = NewBuffer(vr.context, vk.DeviceSize(InitialIndexBufferSize), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), hostVisible); err != nil {
			return err
		}
		if vr.instanceBuffers[i], err = NewBuffer(vr.context, vk.DeviceSize(InitialInstanceBufferSize), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), hostVisible); err != nil {
			return err
		}
	}
	return nil
}

func (vr *Backend) createPipelines() error {
	ctx := vr.context

	glyphVert, err := NewShaderStage(ctx, filepath.Join(vr.config.ShaderDir, "glyph.vert.spv"), vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	overlapFrag, err := NewShaderStage(ctx, filepath.Join(vr.config.ShaderDir, "overlap.frag.spv"), vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	fullscreenVert, err := NewShaderStage(ctx, filepath.Join(vr.config.ShaderDir, "fullscreen.vert.spv"), vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	resolveFrag, err := NewShaderStage(ctx, filepath.Join(vr.config.ShaderDir, "resolve.frag.spv"), vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	compositeFrag, err := NewShaderStage(ctx, filepath.Join(vr.config.ShaderDir, "composite.frag.spv"), vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	vr.shaderStages = []*VulkanShaderStage{glyphVert, overlapFrag, fullscreenVert, resolveFrag, compositeFrag}

	viewport := vk.Viewport{
		X: 0, Y: float32(ctx.FramebufferHeight),
		Width: float32(ctx.FramebufferWidth), Height: -float32(ctx.FramebufferHeight),
		MinDepth: 0, MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: ctx.FramebufferWidth, Height: ctx.FramebufferHeight},
	}

	// Binding 0: packed glyph vertices. Binding 1: per-instance
	// records in instance.Raw field order.
	overlapBindings := []vk.VertexInputBindingDescription{
		{Binding: 0, Stride: GPUVertexStride, InputRate: vk.VertexInputRateVertex},
		{Binding: 1, Stride: uint32(instance.RawStride), InputRate: vk.VertexInputRateInstance},
	}
	overlapAttributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},  // position
		{Location: 1, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 8},  // role weights
		{Location: 2, Binding: 1, Format: vk.FormatR32g32b32a32Sfloat, Offset: 0},  // model col 0
		{Location: 3, Binding: 1, Format: vk.FormatR32g32b32a32Sfloat, Offset: 16}, // model col 1
		{Location: 4, Binding: 1, Format: vk.FormatR32g32b32a32Sfloat, Offset: 32}, // model col 2
		{Location: 5, Binding: 1, Format: vk.FormatR32g32b32a32Sfloat, Offset: 48}, // model col 3
		{Location: 6, Binding: 1, Format: vk.FormatR32g32b32Sfloat, Offset: 64},    // color
		{Location: 7, Binding: 1, Format: vk.FormatR32Uint, Offset: 76},            // motion flags
		{Location: 8, Binding: 1, Format: vk.FormatR32Uint, Offset: 80},            // start time
		{Location: 9, Binding: 1, Format: vk.FormatR32Sfloat, Offset: 84},          // gain
		{Location: 10, Binding: 1, Format: vk.FormatR32Uint, Offset: 88},           // duration
	}

	overlap, err := NewGraphicsPipeline(ctx, &VulkanPipelineConfig{
		Renderpass:           ctx.GlyphRenderpass,
		Subpass:              SubpassOverlap,
		Bindings:             overlapBindings,
		Attributes:           overlapAttributes,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{ctx.Descriptors.Layout},
		Stages: []vk.PipelineShaderStageCreateInfo{
			glyphVert.ShaderStageCreateInfo,
			overlapFrag.ShaderStageCreateInfo,
		},
		Viewport:         viewport,
		Scissor:          scissor,
		ColorAttachment:  false,
		PushConstantSize: pushConstantSize,
	})
	if err != nil {
		return err
	}
	ctx.OverlapPipeline = overlap

	resolve, err := NewGraphicsPipeline(ctx, &VulkanPipelineConfig{
		Renderpass:           ctx.GlyphRenderpass,
		Subpass:              SubpassResolve,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{ctx.Descriptors.Layout},
		Stages: []vk.PipelineShaderStageCreateInfo{
			fullscreenVert.ShaderStageCreateInfo,
			resolveFrag.ShaderStageCreateInfo,
		},
		Viewport:         viewport,
		Scissor:          scissor,
		ColorAttachment:  false,
		PushConstantSize: pushConstantSize,
	})
	if err != nil {
		return err
	}
	ctx.ResolvePipeline = resolve

	composite, err := NewGraphicsPipeline(ctx, &VulkanPipelineConfig{
		Renderpass:           ctx.GlyphRenderpass,
		Subpass:              SubpassComposite,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{ctx.Descriptors.Layout},
		Stages: []vk.PipelineShaderStageCreateInfo{
			fullscreenVert.ShaderStageCreateInfo,
			compositeFrag.ShaderStageCreateInfo,
		},
		Viewport:         viewport,
		Scissor:          scissor,
		ColorAttachment:  true,
		PushConstantSize: pushConstantSize,
	})
	if err != nil {
		return err
	}
	ctx.CompositePipeline = composite

	return nil
}

func (vr *Backend) regenerateFramebuffers(swapchain *VulkanSwapchain, renderpass *VulkanRenderpass) error {
	for i := 0; i < int(swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{swapchain.Views[i]}
		fb, err := FramebufferCreate(vr.context, renderpass, vr.context.FramebufferWidth, vr.context.FramebufferHeight, attachments)
		if err != nil {
			core.LogError("failed to create framebuffer for swapchain image %d", i)
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *Backend) recreateSwapchain() error {
	// If already being recreated, do not try again.
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called when already recreating.")
		return core.ErrSwapchainOutOfDate
	}

	// Detect if the window is too small to be drawn to
	if vr.cachedFramebufferWidth == 0 || vr.cachedFramebufferHeight == 0 {
		core.LogDebug("recreateSwapchain called when window is < 1 in a dimension.")
		return core.ErrSwapchainOutOfDate
	}

	vr.context.RecreatingSwapchain = true

	// Wait for any operations to complete.
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Clear these out just in case.
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.ImagesInFlight[i] = nil
	}

	// Requery support
	DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, vr.context.Device.SwapchainSupport)

	// Framebuffers and command buffers of the old swapchain.
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	vr.context.GraphicsCommandBuffers = nil
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight, vr.config.VSync)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.Swapchain = sc

	// Sync the framebuffer size with the cached sizes.
	vr.context.FramebufferWidth = vr.cachedFramebufferWidth
	vr.context.FramebufferHeight = vr.cachedFramebufferHeight
	vr.context.GlyphRenderpass.X = 0
	vr.context.GlyphRenderpass.Y = 0
	vr.context.GlyphRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.GlyphRenderpass.H = float32(vr.context.FramebufferHeight)
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0

	// Update framebuffer size generation.
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.GlyphRenderpass); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	if err := vr.createCommandBuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	// The accumulator family is framebuffer sized; reallocate and
	// rebind.
	vr.destroyTargets()
	if err := vr.allocateTargets(vr.context.FramebufferWidth, vr.context.FramebufferHeight); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.Descriptors.BindBuffers(vr.context, vr.context.Accumulator, vr.context.GlyphLayer, vr.context.History)

	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	vr.context.RecreatingSwapchain = false
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
