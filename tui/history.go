// Package tui provides a Bubble Tea terminal UI for the rulecore
// simulator: a scrolling resolution log, an input line, and a live
// metrics status bar.
package tui

import "strings"

// History is a fixed-capacity ring of submitted commands with
// cursor-based recall. Blank lines and immediate repeats are not
// recorded; once full, each new command overwrites the oldest one.
type History struct {
	buf    []string
	start  int // ring position of the oldest entry
	count  int
	cursor int // -1 = not recalling, otherwise offset from the oldest entry
}

// NewHistory creates a history ring holding up to capacity commands.
func NewHistory(capacity int) *History {
	return &History{
		buf:    make([]string, capacity),
		cursor: -1,
	}
}

// at returns the i-th entry counting from the oldest.
func (h *History) at(i int) string {
	return h.buf[(h.start+i)%len(h.buf)]
}

// Len returns the number of recorded commands.
func (h *History) Len() int {
	return h.count
}

// Push records a submitted command. Blank input and a repeat of the
// most recent entry are dropped; recalling the same command twice in a
// row should cost one Prev, not two.
func (h *History) Push(cmd string) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return
	}
	if h.count > 0 && h.at(h.count-1) == cmd {
		return
	}
	if h.count == len(h.buf) {
		h.buf[h.start] = cmd
		h.start = (h.start + 1) % len(h.buf)
		return
	}
	h.buf[(h.start+h.count)%len(h.buf)] = cmd
	h.count++
}

// Prev steps the cursor toward older entries and returns the entry
// under it. The first call lands on the newest entry; at the oldest
// the cursor stays put. Returns ("", false) when nothing is recorded.
func (h *History) Prev() (string, bool) {
	if h.count == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.cursor = h.count - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.at(h.cursor), true
}

// Next steps the cursor toward newer entries. Stepping past the newest
// entry leaves recall mode and returns ("", false) so the caller can
// restore fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.count {
		h.cursor = -1
		return "", false
	}
	return h.at(h.cursor), true
}

// ResetCursor leaves recall mode; the next Prev starts from the newest
// entry again.
func (h *History) ResetCursor() {
	h.cursor = -1
}
