package config

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Setting is an observable string value with optional file persistence.
// Used for the merchant agent URL: reads at session start, writes on
// user edit, and change notification to every subscriber instead of
// ambient global state.
type Setting struct {
	mu          sync.RWMutex
	value       string
	path        string
	subscribers []subscriber
	nextID      int
	logger      *logrus.Logger
}

type subscriber struct {
	id     int
	notify func(string)
}

// NewSetting creates a setting seeded with fallback. When path is
// non-empty a previously persisted value takes precedence.
func NewSetting(path, fallback string, logger *logrus.Logger) *Setting {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Setting{value: fallback, path: path, logger: logger}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if v := strings.TrimSpace(string(data)); v != "" {
				s.value = v
			}
		}
	}
	return s
}

func (s *Setting) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores the value, persists it and notifies subscribers. No-op
// when the value is unchanged.
func (s *Setting) Set(value string) {
	s.mu.Lock()
	if s.value == value {
		s.mu.Unlock()
		return
	}
	s.value = value
	subscribers := make([]subscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	if s.path != "" {
		if err := os.WriteFile(s.path, []byte(value+"\n"), 0o644); err != nil {
			s.logger.Warnf("Failed to persist setting to %s: %v", s.path, err)
		}
	}

	for _, sub := range subscribers {
		sub.notify(value)
	}
}

// Subscribe registers a change callback and returns a function that
// removes it again. Callbacks run synchronously on the goroutine
// calling Set, in subscription order; callers whose lifetime is shorter
// than the setting's must unsubscribe on teardown.
func (s *Setting) Subscribe(notify func(string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber{id: id, notify: notify})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}
