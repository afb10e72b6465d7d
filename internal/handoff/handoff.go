// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package handoff passes values between pipeline stages through named slots.
// A Channel holds one value per topic: every Publish replaces the previous
// value, nothing is queued, and a slow consumer silently misses overwritten
// values. Channels are created by their owner (one per orchestration call or
// per refresh loop) and are safe for concurrent use.
package handoff

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/pdiddy/research-agent/internal/logging"
)

// Well-known topics used by the pipeline stages.
const (
	TopicPapers   = "papers"
	TopicKeywords = "keywords"
)

// Channel is a last-write-wins store keyed by topic.
type Channel struct {
	mu    sync.RWMutex
	slots map[string]any
	log   *slog.Logger
}

// New creates an empty channel. A nil logger discards trace records.
func New(log *slog.Logger) *Channel {
	return &Channel{
		slots: make(map[string]any),
		log:   logging.OrDiscard(log),
	}
}

// Publish stores value under topic, replacing any earlier value.
func (c *Channel) Publish(topic string, value any) {
	c.mu.Lock()
	c.slots[topic] = value
	c.mu.Unlock()

	c.log.Debug("published", "topic", topic)
}

// Consume returns the last value published under topic. The boolean is
// false when nothing was ever published there. Consuming does not clear the
// slot.
func (c *Channel) Consume(topic string) (any, bool) {
	c.mu.RLock()
	value, ok := c.slots[topic]
	c.mu.RUnlock()

	c.log.Debug("consumed", "topic", topic, "present", ok)
	return value, ok
}

// Topics returns the populated topics in lexical order.
func (c *Channel) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	topics := make([]string, 0, len(c.slots))
	for t := range c.slots {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// ConsumeAs returns the value under topic converted to T. A missing topic or
// a value of a different type both report false.
func ConsumeAs[T any](c *Channel, topic string) (T, bool) {
	var zero T
	value, ok := c.Consume(topic)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
