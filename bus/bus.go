// Package bus is the in-process snapshot bus: a topic-trie pub/sub with
// retained messages. Producers publish retained state frames (button
// snapshots, battery telemetry); consumers either subscribe for pushes or
// peek the latest retained frame with Latest.
package bus

import "sync"

// Topic is a path of string tokens, e.g. {"input", "state"}.
type Topic []string

// T builds a topic from its tokens.
func T(tokens ...string) Topic { return Topic(tokens) }

// Message carries one payload. Retained messages are stored at their topic
// node and replayed to late subscribers and Latest callers.
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// Subscription is one consumer queue. Delivery is drop-oldest when the
// queue is full, so a slow consumer sees the freshest frames.
type Subscription struct {
	topic Topic
	ch    chan *Message
	bus   *Bus
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.bus.unsubscribe(s) }

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

// Bus is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// New creates a bus with the given per-subscription queue length.
func New(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// Subscribe registers a consumer for an exact topic. The retained message,
// if any, is delivered immediately.
func (b *Bus) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: append(Topic(nil), topic...),
		ch:    make(chan *Message, b.qLen),
		bus:   b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	if n.retained != nil {
		sub.ch <- n.retained
	}
	return sub
}

// Publish delivers msg to every subscriber of its topic and stores it when
// retained. A nil retained payload clears the stored frame.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range msg.Topic {
		if n.children == nil {
			if !msg.Retained {
				return
			}
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			if !msg.Retained {
				return
			}
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}

	for _, sub := range n.subs {
		select {
		case sub.ch <- msg:
		default:
			// Queue full: drop the oldest frame in favour of the new one.
			<-sub.ch
			sub.ch <- msg
		}
	}

	if msg.Retained {
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

// Latest peeks the retained message at topic without subscribing.
func (b *Bus) Latest(topic Topic) (*Message, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.root
	for _, tok := range topic {
		child, ok := n.children[tok]
		if !ok {
			return nil, false
		}
		n = child
	}
	if n.retained == nil {
		return nil, false
	}
	return n.retained, true
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, tok := range sub.topic {
		child, ok := n.children[tok]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			close(sub.ch)
			break
		}
	}

	// Prune empty nodes back up the path.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}
