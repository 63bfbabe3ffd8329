package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/core"
)

// Storage buffer bindings shared by the overlap, resolve and composite
// stages. One descriptor set serves all three; the buffers are rebound
// only when a resize reallocates them.
const (
	BindingAccumulator uint32 = iota
	BindingGlyphLayer
	BindingHistory
)

type VulkanDescriptors struct {
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool
	Set    vk.DescriptorSet
}

func NewDescriptors(context *VulkanContext) (*VulkanDescriptors, error) {
	d := &VulkanDescriptors{}

	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         BindingAccumulator,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         BindingGlyphLayer,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         BindingHistory,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
	for i := range bindings {
		bindings[i].Deref()
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	layoutInfo.Deref()

	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	d.Layout = layout

	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeStorageBuffer,
			DescriptorCount: uint32(len(bindings)),
		},
	}
	poolSizes[0].Deref()

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: 1,
		PPoolSizes:    poolSizes,
		MaxSets:       1,
	}
	poolInfo.Deref()

	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.Layout, context.Allocator)
		err := fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	d.Pool = pool

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.Layout},
	}
	allocateInfo.Deref()

	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &sets[0]); res != vk.Success {
		d.Destroy(context)
		err := fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	d.Set = sets[0]

	return d, nil
}

// BindBuffers points the set at the current accumulator family. Called
// at startup and again after every resize reallocation.
func (d *VulkanDescriptors) BindBuffers(context *VulkanContext, accumulator, layer, history *VulkanBuffer) {
	buffers := []*VulkanBuffer{accumulator, layer, history}
	writes := make([]vk.WriteDescriptorSet, len(buffers))
	for i, b := range buffers {
		info := vk.DescriptorBufferInfo{
			Buffer: b.Handle,
			Offset: 0,
			Range:  b.Size,
		}
		info.Deref()
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          d.Set,
			DstBinding:      uint32(i),
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{info},
		}
		writes[i].Deref()
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	if d.Pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, d.Pool, context.Allocator)
		d.Pool = vk.NullDescriptorPool
	}
	if d.Layout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.Layout, context.Allocator)
		d.Layout = vk.NullDescriptorSetLayout
	}
	d.Set = vk.NullDescriptorSet
}
