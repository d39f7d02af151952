package composition

import "cutroom/model"

// maxHistoryEntries bounds the undo log; the oldest snapshot is dropped
// first once the log is full.
const maxHistoryEntries = 10

// snapshot is one immutable undo entry: the full track set, the derived
// duration and the selection at commit time.
type snapshot struct {
	tracks         []*model.Track
	totalDuration  int64
	selectedClipID string
}

// historyLog is a fixed-capacity linear undo log with a cursor. There is
// no redo: a push after an undo drops the tail beyond the cursor.
type historyLog struct {
	entries []*snapshot
	cursor  int // Index of the entry the next undo restores; -1 = empty
}

func newHistoryLog() *historyLog {
	return &historyLog{cursor: -1}
}

// push appends a snapshot, discarding any entries past the cursor first
// and the oldest entry when the log is at capacity.
func (h *historyLog) push(s *snapshot) {
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, s)
	if len(h.entries) > maxHistoryEntries {
		h.entries = h.entries[1:]
	}
	h.cursor = len(h.entries) - 1
}

// undo returns the snapshot under the cursor and steps the cursor back,
// or nil when the log is exhausted.
func (h *historyLog) undo() *snapshot {
	if h.cursor < 0 {
		return nil
	}
	s := h.entries[h.cursor]
	h.cursor--
	return s
}

// depth returns how many undo steps remain.
func (h *historyLog) depth() int {
	return h.cursor + 1
}
