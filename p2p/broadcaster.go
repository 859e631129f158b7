package p2p

import (
	"sync"
	"time"
)

const (
	outboundQueueCapacity  = 4096
	outboundRetryBaseDelay = 100 * time.Millisecond
	outboundRetryMaxDelay  = 5 * time.Second
)

// Sender is whatever the retry broadcaster drains its queue into: a live
// network client, a test double, or anything else able to ship a raw
// message out to peers.
type Sender interface {
	Send(msg *Message) error
}

// RetryBroadcaster buffers messages and retries delivery with exponential
// backoff whenever Send fails, so a commitment/reveal/vote gossiped during a
// brief network blip is not silently dropped. It never blocks Broadcast
// callers; once the queue is full the oldest message is evicted.
type RetryBroadcaster struct {
	mu     sync.Mutex
	queue  []*Message
	sender Sender
	stop   chan struct{}
}

// NewRetryBroadcaster starts a background drain loop against sender. Pass a
// nil sender and call SetSender later if the transport is not ready yet.
func NewRetryBroadcaster(sender Sender) *RetryBroadcaster {
	rb := &RetryBroadcaster{
		queue:  make([]*Message, 0, outboundQueueCapacity),
		sender: sender,
		stop:   make(chan struct{}),
	}
	go rb.run()
	return rb
}

// Broadcast implements Broadcaster.
func (r *RetryBroadcaster) Broadcast(msg *Message) error {
	if msg == nil {
		return nil
	}
	cp := &Message{Type: msg.Type, Payload: append([]byte(nil), msg.Payload...)}

	r.mu.Lock()
	if len(r.queue) >= outboundQueueCapacity {
		r.queue = r.queue[1:]
	}
	r.queue = append(r.queue, cp)
	r.mu.Unlock()
	return nil
}

// SetSender swaps the delivery target, e.g. once a transport reconnects.
func (r *RetryBroadcaster) SetSender(sender Sender) {
	r.mu.Lock()
	r.sender = sender
	r.mu.Unlock()
}

// Close stops the drain loop.
func (r *RetryBroadcaster) Close() {
	close(r.stop)
}

func (r *RetryBroadcaster) run() {
	delay := outboundRetryBaseDelay
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if r.drainOne() {
				delay = outboundRetryBaseDelay
			} else if delay < outboundRetryMaxDelay {
				delay *= 2
				if delay > outboundRetryMaxDelay {
					delay = outboundRetryMaxDelay
				}
			}
			ticker.Reset(delay)
		}
	}
}

// drainOne attempts to deliver the oldest queued message, reporting whether
// it made progress.
func (r *RetryBroadcaster) drainOne() bool {
	r.mu.Lock()
	if len(r.queue) == 0 || r.sender == nil {
		r.mu.Unlock()
		return false
	}
	msg := r.queue[0]
	sender := r.sender
	r.mu.Unlock()

	if err := sender.Send(msg); err != nil {
		return false
	}

	r.mu.Lock()
	if len(r.queue) > 0 && r.queue[0] == msg {
		r.queue = r.queue[1:]
	}
	r.mu.Unlock()
	return true
}
