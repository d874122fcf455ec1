// Package plexscan wraps the Plex Media Scanner binary bundled with a
// server install. The scanner is invoked as a subprocess; its exit code is
// the only feedback channel, so stderr is captured into the returned error.
// Invocations are serialized through a lock file because the scanner
// misbehaves when several instances touch the same section concurrently.
package plexscan
