package game

const logMaxEntries = 60

// ThoughtEntry is a single line in the thought log.
type ThoughtEntry struct {
	Tick    int
	Label   string // e.g. "M0", "P"
	Hostile bool
	Message string
}

// ThoughtLog is a ring buffer of short narrative lines for the on-screen
// panel.
type ThoughtLog struct {
	entries []ThoughtEntry
	head    int
	count   int
}

// NewThoughtLog creates a thought log with a fixed capacity.
func NewThoughtLog() *ThoughtLog {
	return &ThoughtLog{
		entries: make([]ThoughtEntry, logMaxEntries),
	}
}

// Add appends an entry to the log, overwriting the oldest when full.
func (tl *ThoughtLog) Add(tick int, label string, hostile bool, msg string) {
	if tl == nil {
		return
	}
	tl.entries[tl.head] = ThoughtEntry{
		Tick:    tick,
		Label:   label,
		Hostile: hostile,
		Message: msg,
	}
	tl.head = (tl.head + 1) % logMaxEntries
	if tl.count < logMaxEntries {
		tl.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (tl *ThoughtLog) Recent() []ThoughtEntry {
	result := make([]ThoughtEntry, tl.count)
	for i := 0; i < tl.count; i++ {
		idx := (tl.head - tl.count + i + logMaxEntries) % logMaxEntries
		result[i] = tl.entries[idx]
	}
	return result
}
