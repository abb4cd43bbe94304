package messaging

import (
	"encoding/json"
	"testing"

	"github.com/formweave/formweave-go/internal/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesEverySessionClient(t *testing.T) {
	b := NewBroadcaster(4, nil)
	first := b.AddClient("s1")
	second := b.AddClient("s1")
	other := b.AddClient("s2")

	b.BroadcastEffects("s1", "demo", []events.EffectUpdate{
		{ElementID: "general[detail]", Effect: "hide_if", Display: "hidden"},
	})

	for _, ch := range []chan []byte{first, second} {
		select {
		case frame := <-ch:
			var msg EffectMessage
			require.NoError(t, json.Unmarshal(frame, &msg))
			assert.Equal(t, "demo", msg.FormID)
			require.Len(t, msg.Updates, 1)
			assert.Equal(t, "general[detail]", msg.Updates[0].ElementID)
		default:
			t.Fatal("client did not receive the frame")
		}
	}

	select {
	case <-other:
		t.Fatal("frame leaked to another session")
	default:
	}
}

func TestBroadcastSkipsEmptyUpdates(t *testing.T) {
	b := NewBroadcaster(4, nil)
	ch := b.AddClient("s1")

	b.BroadcastEffects("s1", "demo", nil)
	select {
	case <-ch:
		t.Fatal("empty update list should not produce a frame")
	default:
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	b := NewBroadcaster(1, nil)
	ch := b.AddClient("s1")

	update := []events.EffectUpdate{{ElementID: "x", Effect: "hide_if", Display: "hidden"}}
	b.BroadcastEffects("s1", "demo", update)
	b.BroadcastEffects("s1", "demo", update)

	// The second frame is dropped, not queued behind a slow reader.
	<-ch
	select {
	case <-ch:
		t.Fatal("expected the overflow frame to be dropped")
	default:
	}
}

func TestRemoveClientStopsDelivery(t *testing.T) {
	b := NewBroadcaster(4, nil)
	ch := b.AddClient("s1")
	assert.Equal(t, 1, b.ConnectionCount("s1"))

	b.RemoveClient("s1", ch)
	assert.Equal(t, 0, b.ConnectionCount("s1"))

	b.BroadcastEffects("s1", "demo", []events.EffectUpdate{{ElementID: "x"}})
	select {
	case <-ch:
		t.Fatal("removed client still received a frame")
	default:
	}
}
