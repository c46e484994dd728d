// Package main is the entry point for the explorec CLI binary.
package main

import (
	"os"

	cli "semantic-compiler/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
