package editor

import "testing"

func TestStatusQueueLatestReflectsMostRecentPush(t *testing.T) {
	q := NewStatusQueue(4)
	q.Info("opened %s", "a.go")
	q.Error("save failed: %s", "disk full")

	msg, ok := q.Latest()
	if !ok {
		t.Fatal("expected a latest message")
	}
	if msg.Severity != SeverityError || msg.Text != "save failed: disk full" {
		t.Errorf("got %+v", msg)
	}
}

func TestStatusQueueEvictsOldestPastCapacity(t *testing.T) {
	q := NewStatusQueue(2)
	q.Info("one")
	q.Info("two")
	q.Info("three")

	msgs := q.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages want 2", len(msgs))
	}
	if msgs[0].Text != "two" || msgs[1].Text != "three" {
		t.Errorf("got %+v", msgs)
	}
}

func TestStatusQueueEmptyHasNoLatest(t *testing.T) {
	q := NewStatusQueue(4)
	if _, ok := q.Latest(); ok {
		t.Error("expected no latest message on an empty queue")
	}
}
