// Package main is the production entry point for the sonik music player.
//
// sonik indexes a local music folder and plays it from a keyboard-driven
// terminal UI:
// - Library indexing with a persisted artist/album/track hierarchy
// - Scoped fuzzy search
// - A play queue with auto-advance
//
// Build:
//
//	go build -o build/sonik ./cmd
//
// Run:
//
//	./build/sonik -d ~/Music   # first run: create config and index
//	./build/sonik              # later runs: load the saved library
//	./build/sonik -r           # re-index the configured folder
package main

import "github.com/tejashwikalptaru/sonik/internal/app"

func main() {
	app.Execute()
}
