package config

const (
	defaultLibraryDir     = "/var/lib/plexmediaserver/Library"
	defaultLogDir         = "~/.local/share/mvvid/logs"
	defaultJournalPath    = "~/.local/share/mvvid/journal.db"
	defaultScannerBinary  = "/usr/lib/plexmediaserver/Plex Media Scanner"
	defaultScannerTimeout = 600
	defaultScannerLock    = "~/.local/share/mvvid/scanner.lock"
	defaultOwner          = "plex"
	defaultGroup          = "plex"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"

	// Section keys assigned by a stock install; server-specific, hence
	// configurable.
	defaultMoviesKey = 3
	defaultTVKey     = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:  defaultLibraryDir,
			LogDir:      defaultLogDir,
			JournalPath: defaultJournalPath,
		},
		Scanner: Scanner{
			Binary:         defaultScannerBinary,
			TimeoutSeconds: defaultScannerTimeout,
			LockPath:       defaultScannerLock,
		},
		Library: Library{
			Sections: []Section{
				{Name: "movies", Key: defaultMoviesKey, Dir: "Movies"},
				{Name: "tv", Key: defaultTVKey, Dir: "TV_Shows"},
			},
		},
		Mover: Mover{
			Verify: true,
			Owner:  defaultOwner,
			Group:  defaultGroup,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
