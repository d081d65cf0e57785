package realtime

import (
	"errors"
	"sync"
)

type sentEvent struct {
	Event   string
	Payload any
}

// fakeSession records every event pushed to it
type fakeSession struct {
	id     string
	err    error
	mu     sync.Mutex
	events []sentEvent
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id}
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Send(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, sentEvent{Event: event, Payload: payload})
	return nil
}

func (f *fakeSession) Close() error { return nil }

func (f *fakeSession) Events() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentEvent, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeSession) EventNames() []string {
	var names []string
	for _, e := range f.Events() {
		names = append(names, e.Event)
	}
	return names
}

var errDeadTransport = errors.New("broken pipe")
