// Package main is the entry point for the onetype CLI.
package main

import "onetype.dev/pkg/onetype/cmd"

func main() {
	cmd.Execute()
}
