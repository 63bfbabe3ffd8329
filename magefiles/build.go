//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{
	"glyph.vert",
	"overlap.frag",
	"fullscreen.vert",
	"resolve.frag",
	"composite.frag",
}

// Compiles the GLSL sources under assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	dir := filepath.Join("assets", "shaders")
	for _, src := range shaderSources {
		in := filepath.Join(dir, src)
		out := in + ".spv"
		if _, err := executeCmd("glslc", withArgs(in, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Builds the demo binary.
func (Build) Binary() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Building vecglyph...")
	if _, err := executeCmd("go", withArgs("build", "-o", "vecglyph", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the full test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
