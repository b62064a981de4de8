package sim

import (
	"fmt"
	"testing"
)

func TestCommandBufferFIFO(t *testing.T) {
	b := NewCommandBuffer(4)
	for i := 0; i < 3; i++ {
		if !b.Push(Command{ActorID: fmt.Sprintf("actor-%d", i), Type: CommandMove}) {
			t.Fatalf("push %d rejected", i)
		}
	}
	drained := b.Drain()
	if len(drained) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(drained))
	}
	for i, cmd := range drained {
		want := fmt.Sprintf("actor-%d", i)
		if cmd.ActorID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, cmd.ActorID)
		}
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer after drain, got %d", b.Len())
	}
}

func TestCommandBufferRejectsWhenFull(t *testing.T) {
	b := NewCommandBuffer(2)
	b.Push(Command{Type: CommandMove})
	b.Push(Command{Type: CommandMove})
	if b.Push(Command{Type: CommandMove}) {
		t.Fatalf("expected push to fail at capacity")
	}
	if b.Overflows() != 1 {
		t.Fatalf("expected 1 overflow, got %d", b.Overflows())
	}
}

func TestCommandBufferWrapsAround(t *testing.T) {
	b := NewCommandBuffer(2)
	b.Push(Command{ActorID: "a"})
	b.Push(Command{ActorID: "b"})
	b.Drain()
	b.Push(Command{ActorID: "c"})
	b.Push(Command{ActorID: "d"})
	drained := b.Drain()
	if len(drained) != 2 || drained[0].ActorID != "c" || drained[1].ActorID != "d" {
		t.Fatalf("unexpected drain after wrap: %+v", drained)
	}
}

func TestCommandBufferMinimumCapacity(t *testing.T) {
	b := NewCommandBuffer(0)
	if b.Capacity() != 1 {
		t.Fatalf("expected capacity floor of 1, got %d", b.Capacity())
	}
}
