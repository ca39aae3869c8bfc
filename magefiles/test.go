//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	return goRun("test", "-race", "-count=1", "./...")
}

// Runs the tests that need no window or GL context.
func (Test) Core() error {
	return goRun("test", "-count=1",
		"./engine/core/...", "./engine/assets/...", "./engine/systems/...", "./engine/actors/...")
}
