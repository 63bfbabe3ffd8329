package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/vecglyph/vecglyph/engine/camera"
	"github.com/vecglyph/vecglyph/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the window and translates its events into engine
// callbacks. Key presses map to camera operations; framebuffer size
// changes are forwarded so the renderer can recreate its swapchain.
type Platform struct {
	Window *glfw.Window

	onOperation func(camera.Operation)
	onResize    func(width, height uint32)
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// OnOperation registers the receiver of the key-driven camera commands.
func (p *Platform) OnOperation(fn func(camera.Operation)) {
	p.onOperation = fn
}

// OnResize registers the receiver of framebuffer size changes.
func (p *Platform) OnResize(fn func(width, height uint32)) {
	p.onResize = fn
}

// PumpMessages processes pending window events. Must be called from
// the main thread, once per frame.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

// FramebufferSize returns the current framebuffer size in pixels,
// which on high-DPI displays differs from the window size.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GetRequiredExtensionNames lists the instance extensions the window
// system needs for surface creation.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateVulkanSurface creates the window surface on the given instance
// and returns its raw handle.
func (p *Platform) CreateVulkanSurface(instance vk.Instance) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, nil)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
		return
	}
	if p.onOperation == nil {
		return
	}

	op := camera.OpNone
	switch key {
	case glfw.KeyW, glfw.KeyUp:
		op = camera.OpUp
	case glfw.KeyS, glfw.KeyDown:
		op = camera.OpDown
	case glfw.KeyA, glfw.KeyLeft:
		op = camera.OpLeft
	case glfw.KeyD, glfw.KeyRight:
		op = camera.OpRight
	case glfw.KeyQ, glfw.KeyPageUp:
		op = camera.OpForward
	case glfw.KeyE, glfw.KeyPageDown:
		op = camera.OpBackward
	}
	if op != camera.OpNone {
		p.onOperation(op)
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p.onResize != nil {
		p.onResize(uint32(width), uint32(height))
	}
}
