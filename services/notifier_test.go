package services

import "testing"

// A nil hub makes the underlying broadcast panic; Publish must swallow it
// so a dead hub can never fail a recorded result.
func TestHubNotifierSwallowsPanics(t *testing.T) {
	n := NewHubNotifier(nil, discardLogger())

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Publish let a panic escape: %v", r)
		}
	}()
	n.Publish(TopicTournament, Event{Type: EventStateChanged})
}
