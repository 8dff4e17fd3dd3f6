package lttproc

import "github.com/emirpasic/gods/queues/linkedlistqueue"

// BlankQueue is a FIFO of preserved blank text: ordinary "[...]" blocks and
// single-space markers, restored in the order they were read (spec.md §3,
// "Blank queues").
type BlankQueue struct {
	q *linkedlistqueue.Queue
}

// NewBlankQueue returns an empty blank queue.
func NewBlankQueue() *BlankQueue {
	return &BlankQueue{q: linkedlistqueue.New()}
}

// Push enqueues a blank blob.
func (b *BlankQueue) Push(s string) { b.q.Enqueue(s) }

// Pop dequeues the oldest blank blob, if any.
func (b *BlankQueue) Pop() (string, bool) {
	v, ok := b.q.Dequeue()
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Peek returns the oldest blank blob without removing it.
func (b *BlankQueue) Peek() (string, bool) {
	v, ok := b.q.Peek()
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Len reports the number of queued blobs.
func (b *BlankQueue) Len() int { return b.q.Size() }

// Empty reports whether the queue has no pending blobs.
func (b *BlankQueue) Empty() bool { return b.q.Empty() }

// DrainTo returns every remaining blob, in FIFO order, and empties the queue.
// The drivers call it at end of stream (spec.md §4.D, "Final-pass").
func (b *BlankQueue) DrainTo() []string {
	out := make([]string, 0, b.q.Size())
	for !b.q.Empty() {
		v, _ := b.q.Dequeue()
		out = append(out, v.(string))
	}
	return out
}

// WBlank is one queued wordbound blank. Open holds its "[[...]]" text; a
// closing "[[/]]" is queued as its own entry with that text in Open. No
// code in this package sets Close.
type WBlank struct {
	Open  string
	Close string
}

// WBlankQueue is a FIFO of wordbound blanks, kept independent of
// BlankQueue because an opening/closing pair brackets a specific word
// rather than sitting between tokens (spec.md §3, §6).
type WBlankQueue struct {
	q *linkedlistqueue.Queue
}

// NewWBlankQueue returns an empty wordbound-blank queue.
func NewWBlankQueue() *WBlankQueue {
	return &WBlankQueue{q: linkedlistqueue.New()}
}

// Push enqueues a wordbound blank's text as a new entry's Open; Close is
// left empty.
func (w *WBlankQueue) Push(open string) { w.q.Enqueue(&WBlank{Open: open}) }

// Back returns the most recently pushed (still-open) wordbound blank, or
// nil if the queue is empty.
func (w *WBlankQueue) Back() *WBlank {
	v, ok := w.q.Peek()
	if !ok {
		return nil
	}
	// linkedlistqueue peeks the front; walk to the tail via Values since
	// gods exposes no back-peek primitive.
	vals := w.q.Values()
	_ = v
	return vals[len(vals)-1].(*WBlank)
}

// Pop dequeues the oldest wordbound blank.
func (w *WBlankQueue) Pop() (*WBlank, bool) {
	v, ok := w.q.Dequeue()
	if !ok {
		return nil, false
	}
	return v.(*WBlank), true
}

// Len reports the number of queued wordbound blanks.
func (w *WBlankQueue) Len() int { return w.q.Size() }

// Empty reports whether the queue has no pending wordbound blanks.
func (w *WBlankQueue) Empty() bool { return w.q.Empty() }

// closingWBlank is the literal text of a paired wordbound blank's closing
// half; it carries no content of its own, so it never contributes to the
// combined block's semicolon-joined list.
const closingWBlank = "[[/]]"

// Combine folds every queued wordbound blank into one combined opening block
// of the form "[[a; b; c]]", as postgen does when several wblanks were
// collected across a single skipped region (spec.md §4.H). It also reports
// whether one of the folded entries was itself a closing "[[/]]" marker, in
// which case the caller owes the literal text "[[/]]" back once the word or
// space it wraps has been emitted, mirroring fst_processor.cc's
// need_end_wblank flag.
func (w *WBlankQueue) Combine() (string, bool) {
	if w.q.Empty() {
		return "", false
	}
	vals := w.q.Values()
	parts := make([]string, 0, len(vals))
	needEndWBlank := false
	for _, v := range vals {
		wb := v.(*WBlank)
		if wb.Open == closingWBlank {
			needEndWBlank = true
			continue
		}
		parts = append(parts, stripWBlankDelims(wb.Open))
	}
	w.q.Clear()
	if len(parts) == 0 {
		return "", needEndWBlank
	}
	return "[[" + joinSemicolon(parts) + "]]", needEndWBlank
}

func joinSemicolon(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "; "
		}
		out += p
	}
	return out
}

func stripWBlankDelims(s string) string {
	if len(s) >= 4 && s[:2] == "[[" && s[len(s)-2:] == "]]" {
		return s[2 : len(s)-2]
	}
	return s
}
