//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

const shaderDir = "engine/assets/loaders/shaders"

type Build mg.Namespace

// Tidies the module and builds the testbed binary into bin/.
func (Build) Engine() error {
	if err := goTidy(); err != nil {
		return err
	}
	fmt.Println("Build engine...")
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/bolt", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Validates the embedded GLSL sources with glslangValidator.
func (Build) Shaders() error {
	return validateShaders()
}

func validateShaders() error {
	for _, shader := range []string{"color.vert", "skin.vert", "color.frag"} {
		if _, err := executeCmd("glslangValidator", withArgs(shader), withDir(shaderDir)); err != nil {
			return err
		}
	}
	return nil
}
