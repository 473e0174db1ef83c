package engine

// Entry is the in-memory index record for one key: its location in the
// current log file, plus a cached copy of the command so that compaction
// never has to re-read the file.
type Entry struct {
	Start int64
	Len   int64
	Cmd   Cmd
}

// index maps key to its latest Entry. Insertion-order-agnostic.
type index map[string]Entry
