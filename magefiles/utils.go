//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bin/archview"

// goRun runs a go subcommand with the output streamed. cgo stays on since
// both glfw and the GL bindings need it.
func goRun(args ...string) error {
	env := map[string]string{"CGO_ENABLED": "1"}
	fmt.Printf("Executing: go %s\n", strings.Join(args, " "))
	_, err := sh.Exec(env, os.Stdout, os.Stderr, mg.GoCmd(), args...)
	return err
}

// splitList splits a comma or space separated list, skipping empty items.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
