package ws

import "sync"

// Hub is a topic-keyed fan-out for connected dashboard clients. It
// tracks membership both ways so a disconnecting client can be dropped
// from every topic in one call.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	members map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		topics:  map[string]map[*Client]struct{}{},
		members: map[*Client]map[string]struct{}{},
	}
}

func (h *Hub) Subscribe(topic string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = map[*Client]struct{}{}
	}
	h.topics[topic][client] = struct{}{}
	if _, ok := h.members[client]; !ok {
		h.members[client] = map[string]struct{}{}
	}
	h.members[client][topic] = struct{}{}
}

func (h *Hub) Drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range h.members[client] {
		subs := h.topics[topic]
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(h.members, client)
}

func (h *Hub) Publish(topic string, payload []byte) {
	h.mu.RLock()
	subs := h.topics[topic]
	h.mu.RUnlock()

	for c := range subs {
		c.send(payload)
	}
}
