package engine

// Progress is an immutable snapshot of a running capture or restore.
type Progress struct {
	Stage   string // "copy" or "restore"
	Current string // path of the item just finished
	Done    int
	Total   int
}

// ProgressFunc observes progress snapshots. Callbacks may fire from any
// worker goroutine; observers must be safe for concurrent use or hand
// off to a channel.
type ProgressFunc func(Progress)

// progressDue reports whether a callback should fire: every 50th
// completed item and unconditionally on the last.
func progressDue(done, total int) bool {
	return done == total || done%50 == 0
}
