package collection_state

// History is an insertion ordered set of collected object keys, evicted oldest first
type History struct {
	keys  []string
	index map[string]struct{}
}

func NewHistory(keys ...string) *History {
	h := &History{index: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		h.Add(k)
	}
	return h
}

func (h *History) Contains(key string) bool {
	_, ok := h.index[key]
	return ok
}

// Add appends key unless it is already present
func (h *History) Add(key string) {
	if h.Contains(key) {
		return
	}
	h.keys = append(h.keys, key)
	h.index[key] = struct{}{}
}

// Trim evicts the oldest keys until at most max remain
func (h *History) Trim(max int) {
	if max < 0 || len(h.keys) <= max {
		return
	}
	excess := len(h.keys) - max
	for _, k := range h.keys[:excess] {
		delete(h.index, k)
	}
	h.keys = append([]string(nil), h.keys[excess:]...)
}

func (h *History) Len() int {
	return len(h.keys)
}

// Keys returns the keys oldest first
func (h *History) Keys() []string {
	res := make([]string, len(h.keys))
	copy(res, h.keys)
	return res
}
