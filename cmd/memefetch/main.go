// Package main provides the memefetch command.
//
// memefetch downloads a catalog of meme template images into a local
// directory, skipping files that already exist.
//
// Usage:
//
//	memefetch [--dir DIR]
//	memefetch list
//
// See --help for all available options.
package main

func main() {
	Execute()
}
