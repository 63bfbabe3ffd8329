package core

import (
	"errors"
)

var (
	// ErrDeviceLost indicates the GPU device is gone. Fatal to the session:
	// the host must recreate the device and flush every GPU-owned cache
	// before resuming.
	ErrDeviceLost = errors.New("gpu device lost")
	// ErrSwapchainOutOfDate is returned while the swapchain is being
	// recreated after a resize. The frame is skipped, not failed.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date, recreating")
	ErrUnknown            = errors.New("unknown")
)
