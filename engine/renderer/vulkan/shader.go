package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"

	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/core"
)

// VulkanShaderStage is one compiled SPIR-V module with its pipeline
// stage description.
type VulkanShaderStage struct {
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage loads a .spv file produced by the shader build task
// and wraps it for pipeline creation.
func NewShaderStage(context *VulkanContext, path string, stageFlag vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		core.LogError("unable to read shader module %s: %s", path, err)
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader module %s is not valid SPIR-V: %d bytes", path, len(code))
		core.LogError(err.Error())
		return nil, err
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}
	createInfo.Deref()

	stage := &VulkanShaderStage{}
	if res := vk.CreateShaderModule(
		context.Device.LogicalDevice,
		&createInfo,
		context.Allocator,
		&stage.Handle); res != vk.Success {
		err := fmt.Errorf("failed to create shader module %s: %s", path, VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	stage.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stageFlag,
		Module: stage.Handle,
		PName:  VulkanSafeString("main"),
	}
	stage.ShaderStageCreateInfo.Deref()

	return stage, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}
