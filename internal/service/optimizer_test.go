package service

import (
	"context"
	"errors"
	"testing"

	"campusnet/internal/domain"
	"campusnet/internal/metrics"
	"campusnet/internal/mst"
)

func TestOptimizer(t *testing.T) {
	ctx := context.Background()
	o := NewOptimizer(metrics.New(), "api")

	t.Run("sample campus", func(t *testing.T) {
		f := domain.SampleCampus()
		resp, err := o.Optimize(ctx, OptimizeRequest{Nodes: f.Nodes, Edges: f.Edges})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.TotalCost != 560 || !resp.Spanning || resp.Components != 1 {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("empty", func(t *testing.T) {
		resp, err := o.Optimize(ctx, OptimizeRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.MinimumSpanningTree == nil || len(resp.MinimumSpanningTree) != 0 || resp.TotalCost != 0 {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("engine errors pass through", func(t *testing.T) {
		req := OptimizeRequest{
			Nodes: []domain.Node{{ID: "A"}},
			Edges: []domain.Edge{*domain.NewEdge("A", "B", 1)},
		}
		resp, err := o.Optimize(ctx, req)
		if resp != nil {
			t.Error("expected no response on error")
		}
		var ue *mst.UnknownNodeError
		if !errors.As(err, &ue) {
			t.Errorf("expected *mst.UnknownNodeError, got %T %v", err, err)
		}
	})

	t.Run("require connected", func(t *testing.T) {
		strict := NewOptimizer(nil, "cli", mst.WithRequireConnected())
		req := OptimizeRequest{Nodes: []domain.Node{{ID: "A"}, {ID: "B"}}}
		if _, err := strict.Optimize(ctx, req); !errors.Is(err, mst.ErrDisconnected) {
			t.Errorf("expected ErrDisconnected, got %v", err)
		}
	})
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus(metrics.New())

	fast := make(chan Event, 4)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	bus.Publish(Event{Type: EventNodeCreated})
	select {
	case ev := <-fast:
		if ev.Type != EventNodeCreated {
			t.Errorf("expected node_created, got %s", ev.Type)
		}
	default:
		t.Fatal("expected event on fast subscriber")
	}

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventNodeDeleted})
	if len(fast) != 0 {
		t.Error("expected no events after unsubscribe")
	}
}
