package inference

// Window is the bounded token history fed to the model. It keeps at most
// limit ids, evicting the oldest first, and tracks its real length so
// padding never has to be inferred from the ids themselves.
type Window struct {
	limit int
	ids   []int
}

// NewWindow copies ids into a window of the given limit, keeping the most
// recent ones.
func NewWindow(limit int, ids []int) *Window {
	if limit <= 0 {
		limit = DefaultSequenceLength
	}
	w := &Window{limit: limit, ids: make([]int, 0, limit+1)}
	if len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	w.ids = append(w.ids, ids...)
	return w
}

// Push appends id and evicts the oldest id when the window is full.
func (w *Window) Push(id int) {
	w.ids = append(w.ids, id)
	if n := len(w.ids) - w.limit; n > 0 {
		w.ids = append(w.ids[:0], w.ids[n:]...)
	}
}

func (w *Window) Len() int   { return len(w.ids) }
func (w *Window) Limit() int { return w.limit }

// IDs returns a copy of the current history.
func (w *Window) IDs() []int {
	return append([]int(nil), w.ids...)
}

// Position is the index of the last real id, the row whose scores predict
// the next token. It is -1 for an empty window.
func (w *Window) Position() int {
	return min(len(w.ids), w.limit) - 1
}

// Input fills dst (allocating when it is too small) with the history
// followed by pad up to the window limit.
func (w *Window) Input(dst []int32, pad int32) []int32 {
	if cap(dst) < w.limit {
		dst = make([]int32, w.limit)
	}
	dst = dst[:w.limit]
	for i := range dst {
		if i < len(w.ids) {
			dst[i] = int32(w.ids[i])
		} else {
			dst[i] = pad
		}
	}
	return dst
}
