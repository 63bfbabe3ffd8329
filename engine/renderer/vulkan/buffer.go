package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/core"
)

// VulkanBuffer is a device buffer with its backing allocation. Vertex,
// index and instance streams live in host-visible buffers rewritten
// every frame; the accumulator family lives in device-local storage
// buffers sized to the framebuffer.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize

	hostVisible bool
}

func NewBuffer(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Size:        size,
		hostVisible: memoryFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0,
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	bufferCreateInfo.Deref()

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, uint32(memoryFlags))
	if memoryIndex < 0 {
		buffer.Destroy(context)
		err := fmt.Errorf("no suitable memory type for buffer")
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	allocateInfo.Deref()

	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		err := fmt.Errorf("failed to allocate buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy(context)
		err := fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	return buffer, nil
}

// LoadData maps the buffer and copies data starting at offset. Only
// valid on host-visible buffers.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, offset vk.DeviceSize, data []byte) error {
	if !vb.hostVisible {
		err := fmt.Errorf("LoadData called on a device-local buffer")
		core.LogError(err.Error())
		return err
	}
	if vk.DeviceSize(len(data))+offset > vb.Size {
		err := fmt.Errorf("buffer upload of %d bytes at offset %d exceeds size %d", len(data), offset, vb.Size)
		core.LogError(err.Error())
		return err
	}

	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, offset, vk.DeviceSize(len(data)), 0, &mapped); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

// Fill records a transfer fill of the whole buffer with a constant
// word; the cleanup stage zeroes the accumulator this way.
func (vb *VulkanBuffer) Fill(commandBuffer *VulkanCommandBuffer, value uint32) {
	vk.CmdFillBuffer(commandBuffer.Handle, vb.Handle, 0, vb.Size, value)
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
	if vb.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	vb.Size = 0
}
