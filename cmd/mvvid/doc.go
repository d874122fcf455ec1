// Package main hosts the mvvid CLI entrypoint and command graph.
//
// The Cobra-based command tree moves downloaded media into Plex library
// sections, triggers the bundled Plex Media Scanner, and exposes the move
// journal and configuration scaffolding. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
