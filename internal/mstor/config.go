package mstor

// Config is the resolved configuration record the store is handed at
// Open. mstor never parses a config file itself; that belongs to
// whatever process wires mdsc/osdc/unitaryc together above this
// package.
type Config struct {
	// Path is the on-disk location of the bolt database file.
	Path string

	// MinRepl and ManRepl are the minimum and manually-requested
	// replication factors used by Chunkalloc when it calls the
	// ReplicaPlacer. Chunkalloc reads ManRepl directly rather than
	// MinRepl for its replica count — see DESIGN.md Open Questions.
	MinRepl int
	ManRepl int

	// CacheSize hints the size of bolt's page cache / OS file cache
	// working set; bolt itself has no separate LRU block cache knob,
	// so this is informational sizing for callers that front the
	// store with their own page cache.
	CacheSize int

	// NoSync disables fsync-on-commit. Conforming deployments leave
	// this false ("sync writes on", per §4.2).
	NoSync bool
}

func (c Config) withDefaults() Config {
	if c.MinRepl <= 0 {
		c.MinRepl = 1
	}
	if c.ManRepl <= 0 {
		c.ManRepl = c.MinRepl
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 32 << 20
	}
	return c
}
