package speech

import (
	"slices"
	"sync"
)

// VoiceHub delivers voice availability notifications to subscribers. The
// last published list is replayed to late subscribers.
type VoiceHub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]func([]Voice)
	voices []Voice
	have   bool
}

// Subscribe registers fn, it is called right away when voices were already
// published.
func (h *VoiceHub) Subscribe(fn func([]Voice)) (cancel func()) {
	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[int]func([]Voice))
	}
	id := h.next
	h.next++
	h.subs[id] = fn
	voices, have := slices.Clone(h.voices), h.have
	h.mu.Unlock()

	if have {
		fn(voices)
	}
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish notifies all subscribers about new list of available voices.
func (h *VoiceHub) Publish(voices []Voice) {
	h.mu.Lock()
	h.voices, h.have = slices.Clone(voices), true
	subs := make([]func([]Voice), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(slices.Clone(voices))
	}
}
