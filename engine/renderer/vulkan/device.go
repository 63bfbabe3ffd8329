package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   *VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32
	PresentQueueIndex  int32
	TransferQueueIndex int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	TransferQueue vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties
}

type VulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	Transfer             bool
	DeviceExtensionNames []string
	// The overlap stage issues atomicAdd on a storage buffer from
	// fragment invocations, which is an optional device feature.
	FragmentStoresAndAtomics bool
	DiscreteGPU              bool
}

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex uint32
	PresentFamilyIndex  uint32
	TransferFamilyIndex uint32
}

func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	presentSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.PresentQueueIndex
	transferSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.TransferQueueIndex
	indexCount := 1

	if !presentSharesGraphicsQueue {
		indexCount++
	}
	if !transferSharesGraphicsQueue {
		indexCount++
	}
	indices := make([]uint32, indexCount)
	index := 0
	indices[index] = uint32(context.Device.GraphicsQueueIndex)
	index += 1

	if !presentSharesGraphicsQueue {
		indices[index] = uint32(context.Device.PresentQueueIndex)
		index += 1
	}
	if !transferSharesGraphicsQueue {
		indices[index] = uint32(context.Device.TransferQueueIndex)
		index += 1
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, indexCount)
	for i := 0; i < indexCount; i++ {
		queueCreateInfos[i].SType = vk.StructureTypeDeviceQueueCreateInfo
		queueCreateInfos[i].QueueFamilyIndex = indices[i]
		queueCreateInfos[i].QueueCount = 1
		queueCreateInfos[i].Flags = 0
		queueCreateInfos[i].PNext = nil
		var queuePriority float32 = 1.0
		queueCreateInfos[i].PQueuePriorities = []float32{queuePriority}
	}

	// Request device features. The accumulator depends on fragment
	// stage storage-buffer atomics.
	deviceFeatures := vk.PhysicalDeviceFeatures{}
	deviceFeatures.FragmentStoresAndAtomics = vk.True

	portabilityRequired := false
	var availableExtensionCount uint32 = 0
	var availableExtensions []vk.ExtensionProperties

	if res := vk.EnumerateDeviceExtensionProperties(context.Device.PhysicalDevice, "", &availableExtensionCount, nil); res != vk.Success {
		err := fmt.Errorf("error in EnumerateDeviceExtensionProperties")
		core.LogError(err.Error())
		return err
	}

	if availableExtensionCount != 0 {
		availableExtensions = make([]vk.ExtensionProperties, availableExtensionCount)
		if res := vk.EnumerateDeviceExtensionProperties(context.Device.PhysicalDevice, "", &availableExtensionCount, availableExtensions); res != vk.Success {
			err := fmt.Errorf("error in EnumerateDeviceExtensionProperties")
			core.LogError(err.Error())
			return err
		}

		for i := 0; i < int(availableExtensionCount); i++ {
			availableExtensions[i].Deref()
			end := FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])
			if vk.ToString(availableExtensions[i].ExtensionName[:end+1]) == "VK_KHR_portability_subset" {
				core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
				portabilityRequired = true
				break
			}
		}
	}
	availableExtensions = nil

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if portabilityRequired {
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(indexCount),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	// Create the device.
	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("vkCreateDevice failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Logical device created.")

	// Get queues.
	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.GraphicsQueueIndex),
		0,
		&context.Device.GraphicsQueue)

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.PresentQueueIndex),
		0,
		&context.Device.PresentQueue)

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.TransferQueueIndex),
		0,
		&context.Device.TransferQueue)
	core.LogInfo("Queues obtained.")

	// Create command pool for graphics queue.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		err := fmt.Errorf("vkCreateCommandPool failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	// Unset queues
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil
	context.Device.TransferQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.GraphicsCommandPool,
		context.Allocator)

	// Destroy logical device
	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	core.LogInfo("Releasing physical device resources...")
	context.Device.PhysicalDevice = nil

	if context.Device.SwapchainSupport != nil {
		context.Device.SwapchainSupport.Formats = nil
		context.Device.SwapchainSupport.FormatCount = 0
		context.Device.SwapchainSupport.PresentModes = nil
		context.Device.SwapchainSupport.PresentModeCount = 0
		context.Device.SwapchainSupport.Capabilities = vk.SurfaceCapabilities{}
	}

	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
	context.Device.TransferQueueIndex = -1
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	// Surface capabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface capabilities")
		core.LogError(err.Error())
		return err
	}
	supportInfo.Capabilities.Deref()

	// Surface formats
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface formats")
		core.LogError(err.Error())
		return err
	}
	if supportInfo.FormatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, supportInfo.FormatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, supportInfo.Formats); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface formats")
			core.LogError(err.Error())
			return err
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	// Present modes
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface present modes")
		core.LogError(err.Error())
		return err
	}
	if supportInfo.PresentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, supportInfo.PresentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, supportInfo.PresentModes); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface present modes")
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32 = 0
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices")
		core.LogError(err.Error())
		return err
	}

	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found")
		core.LogError(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)

	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices")
		core.LogError(err.Error())
		return err
	}

	for i := 0; i < int(physicalDeviceCount); i++ {
		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()

		features := vk.PhysicalDeviceFeatures{}
		vk.GetPhysicalDeviceFeatures(physicalDevices[i], &features)
		features.Deref()

		memory := vk.PhysicalDeviceMemoryProperties{}
		vk.GetPhysicalDeviceMemoryProperties(physicalDevices[i], &memory)
		memory.Deref()

		requirements := VulkanPhysicalDeviceRequirements{
			Graphics:                 true,
			Present:                  true,
			Transfer:                 true,
			FragmentStoresAndAtomics: true,
			DiscreteGPU:              true,
			DeviceExtensionNames:     []string{vk.KhrSwapchainExtensionName},
		}

		// Integrated GPUs handle the glyph workload fine, and Apple
		// hardware never reports as discrete.
		if runtime.GOOS == "darwin" || physicalDeviceCount == 1 {
			requirements.DiscreteGPU = false
		}

		queueInfo := VulkanPhysicalDeviceQueueFamilyInfo{}
		result := PhysicalDeviceMeetsRequirements(
			physicalDevices[i],
			context.Surface,
			&properties,
			&features,
			&requirements,
			&queueInfo,
			context.Device.SwapchainSupport)

		if result {
			core.LogInfo("Selected device: '%s'.", vk.ToString(properties.DeviceName[:]))
			switch properties.DeviceType {
			default:
				fallthrough
			case vk.PhysicalDeviceTypeOther:
				core.LogInfo("GPU type is Unknown.")
			case vk.PhysicalDeviceTypeIntegratedGpu:
				core.LogInfo("GPU type is Integrated.")
			case vk.PhysicalDeviceTypeDiscreteGpu:
				core.LogInfo("GPU type is Discrete.")
			case vk.PhysicalDeviceTypeVirtualGpu:
				core.LogInfo("GPU type is Virtual.")
			case vk.PhysicalDeviceTypeCpu:
				core.LogInfo("GPU type is CPU.")
			}

			core.LogInfo(
				"GPU Driver version: %d.%d.%d",
				vk.Version.Major(vk.Version(properties.DriverVersion)),
				vk.Version.Minor(vk.Version(properties.DriverVersion)),
				vk.Version.Patch(vk.Version(properties.DriverVersion)),
			)

			core.LogInfo(
				"Vulkan API version: %d.%d.%d",
				vk.Version.Major(vk.Version(properties.ApiVersion)),
				vk.Version.Minor(vk.Version(properties.ApiVersion)),
				vk.Version.Patch(vk.Version(properties.ApiVersion)),
			)

			for j := 0; j < int(memory.MemoryHeapCount); j++ {
				memory.MemoryHeaps[j].Deref()
				memorySizeGib := memory.MemoryHeaps[j].Size / 1024.0 / 1024.0 / 1024.0
				if vk.MemoryHeapFlagBits(memory.MemoryHeaps[j].Flags)&vk.MemoryHeapDeviceLocalBit > 0 {
					core.LogInfo("Local GPU memory: %d GiB", memorySizeGib)
				} else {
					core.LogInfo("Shared System memory: %d GiB", memorySizeGib)
				}
			}

			context.Device.PhysicalDevice = physicalDevices[i]
			context.Device.GraphicsQueueIndex = int32(queueInfo.GraphicsFamilyIndex)
			context.Device.PresentQueueIndex = int32(queueInfo.PresentFamilyIndex)
			context.Device.TransferQueueIndex = int32(queueInfo.TransferFamilyIndex)

			// Keep a copy of properties, features and memory info for later use.
			context.Device.Properties = properties
			context.Device.Features = features
			context.Device.Memory = memory
			break
		}
	}

	// Ensure a device was selected
	if context.Device.PhysicalDevice == nil {
		err := fmt.Errorf("no physical devices were found which meet the requirements")
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Physical device selected.")
	return nil
}

func PhysicalDeviceMeetsRequirements(device vk.PhysicalDevice, surface vk.Surface, properties *vk.PhysicalDeviceProperties, features *vk.PhysicalDeviceFeatures, requirements *VulkanPhysicalDeviceRequirements, outQueueInfo *VulkanPhysicalDeviceQueueFamilyInfo, outSwapchainSupport *VulkanSwapchainSupportInfo) bool {
	outQueueInfo.GraphicsFamilyIndex = 0
	outQueueInfo.PresentFamilyIndex = 0
	outQueueInfo.TransferFamilyIndex = 0

	if requirements.DiscreteGPU {
		if properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
			core.LogInfo("Device is not a discrete GPU, and one is required. Skipping.")
			return false
		}
	}

	var queueFamilyCount uint32 = 0
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	foundGraphics := false
	foundPresent := false
	foundTransfer := false

	// Look at each queue and see what it supports. Prefer a dedicated
	// transfer family when one exists.
	minTransferScore := 255
	for i := 0; i < int(queueFamilyCount); i++ {
		queueFamilies[i].Deref()
		currentTransferScore := 0

		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			outQueueInfo.GraphicsFamilyIndex = uint32(i)
			foundGraphics = true
			currentTransferScore++
		}

		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueTransferBit > 0 {
			if currentTransferScore <= minTransferScore {
				minTransferScore = currentTransferScore
				outQueueInfo.TransferFamilyIndex = uint32(i)
				foundTransfer = true
			}
		}

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return false
		}
		if supportsPresent == vk.True {
			outQueueInfo.PresentFamilyIndex = uint32(i)
			foundPresent = true
		}
	}

	core.LogDebug("Graphics: %t | Present: %t | Transfer: %t | %s",
		foundGraphics, foundPresent, foundTransfer, vk.ToString(properties.DeviceName[:]))

	if (!requirements.Graphics || foundGraphics) &&
		(!requirements.Present || foundPresent) &&
		(!requirements.Transfer || foundTransfer) {
		core.LogInfo("Device meets queue requirements.")
		core.LogDebug("Graphics Family Index: %d", outQueueInfo.GraphicsFamilyIndex)
		core.LogDebug("Present Family Index:  %d", outQueueInfo.PresentFamilyIndex)
		core.LogDebug("Transfer Family Index: %d", outQueueInfo.TransferFamilyIndex)

		// Query swapchain support.
		if err := DeviceQuerySwapchainSupport(device, surface, outSwapchainSupport); err != nil {
			return false
		}

		if outSwapchainSupport.FormatCount < 1 || outSwapchainSupport.PresentModeCount < 1 {
			core.LogInfo("Required swapchain support not present, skipping device.")
			return false
		}

		// Device extensions.
		if requirements.DeviceExtensionNames != nil {
			var availableExtensionCount uint32 = 0
			var availableExtensions []vk.ExtensionProperties

			if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
				return false
			}

			if availableExtensionCount != 0 {
				availableExtensions = make([]vk.ExtensionProperties, availableExtensionCount)
				if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
					return false
				}
				for i := range requirements.DeviceExtensionNames {
					found := false
					for j := 0; j < int(availableExtensionCount); j++ {
						availableExtensions[j].Deref()
						end := FindFirstZeroInByteArray(availableExtensions[j].ExtensionName[:])
						if requirements.DeviceExtensionNames[i] == vk.ToString(availableExtensions[j].ExtensionName[:end+1]) {
							found = true
							break
						}
					}
					if !found {
						core.LogInfo("Required extension not found: '%s', skipping device.", requirements.DeviceExtensionNames[i])
						return false
					}
				}
			}
		}

		if requirements.FragmentStoresAndAtomics && features.FragmentStoresAndAtomics == vk.False {
			core.LogInfo("Device does not support fragmentStoresAndAtomics, skipping.")
			return false
		}

		// Device meets all requirements.
		return true
	}
	return false
}
