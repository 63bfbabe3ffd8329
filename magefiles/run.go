//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the windowed testbed.
func (Run) Testbed() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders 120 frames of the demo scene to PNG files through the
// software backend; no GPU or window required.
func (Run) Record() error {
	fmt.Println("Recording frames...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "-record", "120", "-out", "frames"), withStream()); err != nil {
		return err
	}
	return nil
}
