package vulkan

import "sync"

type LockGroup string

// Frames are submitted from a single control thread, but pipeline and
// queue work can also be triggered from swapchain recreation while a
// config reload rebuilds shaders. The lock pool keeps those driver
// entry points serialized per concern.
const (
	CommandBufferManagement LockGroup = "command_buffer_management"
	QueueManagement         LockGroup = "queue_management"
	PipelineManagement      LockGroup = "pipeline_management"
)

// VulkanLockPool is a named mutex pool.
type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex // Protects access to the locks map
}

var lockPool = NewVulkanLockPool()

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

// setLock gets or creates the mutex for a group and locks it.
func (vs *VulkanLockPool) setLock(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	if _, exists := vs.locks[group]; !exists {
		vs.locks[group] = &sync.Mutex{}
	}
	l := vs.locks[group]
	vs.mu.Unlock()

	l.Lock()
	return l
}

func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.setLock(group)
	defer l.Unlock()

	return fn()
}
