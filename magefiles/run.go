//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Builds the binary and previews the files named in $ARCHVIEW_FILES under
// the asset root in $ARCHVIEW_ASSETS.
func (Run) Preview() error {
	mg.Deps(Build.Binary)

	args := []string{}
	if root := os.Getenv("ARCHVIEW_ASSETS"); root != "" {
		args = append(args, "-assets", root)
	}
	if files := os.Getenv("ARCHVIEW_FILES"); files != "" {
		args = append(args, splitList(files)...)
	}
	fmt.Println("Run archview...")
	return sh.RunV(binary, args...)
}
