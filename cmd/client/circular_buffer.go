package main

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MessageBuffer remembers the most recent results so that near-identical
// repeats can be suppressed.
type MessageBuffer struct {
	messages []string
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewMessageBuffer creates a new message buffer with the specified capacity
func NewMessageBuffer(capacity int) *MessageBuffer {
	if capacity <= 0 {
		capacity = 1
	}

	return &MessageBuffer{
		messages: make([]string, capacity),
		capacity: capacity,
	}
}

// Add adds a new message to the buffer, evicting the oldest when full.
func (mb *MessageBuffer) Add(message string) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.add(normalizeMessage(message))
}

func (mb *MessageBuffer) add(normalized string) {
	mb.messages[mb.head] = normalized
	mb.head = (mb.head + 1) % mb.capacity
	if mb.size < mb.capacity {
		mb.size++
	}
}

// IsSimilar checks if a message is similar to any message in the buffer
func (mb *MessageBuffer) IsSimilar(message string, threshold float64) bool {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return mb.similar(normalizeMessage(message), threshold)
}

// AddIfNew adds message unless a similar one is already buffered. It
// reports whether the message was added.
func (mb *MessageBuffer) AddIfNew(message string, threshold float64) bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	normalized := normalizeMessage(message)
	if mb.similar(normalized, threshold) {
		return false
	}
	mb.add(normalized)
	return true
}

func (mb *MessageBuffer) similar(normalized string, threshold float64) bool {
	for i := 0; i < mb.size; i++ {
		if isSimilarMessage(normalized, mb.messages[i], threshold) {
			return true
		}
	}
	return false
}

// normalizeMessage lower-cases msg and drops punctuation, since engines
// disagree on both.
func normalizeMessage(msg string) string {
	msg = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, msg)
	return strings.Join(strings.Fields(msg), " ")
}

// isSimilarMessage checks if two messages are similar based on Levenshtein distance
func isSimilarMessage(msg1, msg2 string, threshold float64) bool {
	if msg1 == msg2 {
		return true
	}
	if msg1 == "" || msg2 == "" {
		return false
	}

	distance := levenshtein.ComputeDistance(msg1, msg2)
	maxLen := max(utf8.RuneCountInString(msg1), utf8.RuneCountInString(msg2))

	similarity := 1.0 - (float64(distance) / float64(maxLen))
	return similarity >= threshold
}
