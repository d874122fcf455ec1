// Package config loads and validates the TOML configuration that maps Plex
// library sections to destination directories and locates the bundled
// Plex Media Scanner binary.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/mvvid/config.toml, then a project-local mvvid.toml. A missing
// file is not an error; defaults mirror a stock Plex Media Server install.
package config
