//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Build mg.Namespace

// Downloads the modules and builds the archview binary into bin/.
func (Build) Binary() error {
	if err := goRun("mod", "download"); err != nil {
		return err
	}
	return goRun("build", "-o", binary, ".")
}

// Removes the build output.
func (Build) Clean() error {
	return sh.Rm("bin")
}
