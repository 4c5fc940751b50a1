package subscribers

import (
	"testing"

	"djp.chapter42.de/beeper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

func TestSubscribeAndBroadcast(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Subscribe()
	assert.Equal(t, 1, reg.Count())

	reg.Broadcast("update")

	select {
	case event := <-sub.Events():
		assert.Equal(t, "update", event)
	default:
		t.Fatal("kein Event empfangen")
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	reg := NewRegistry()
	first := reg.Subscribe()
	second := reg.Subscribe()

	reg.Broadcast("update")

	assert.Equal(t, "update", <-first.Events())
	assert.Equal(t, "update", <-second.Events())
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	reg := NewRegistry()
	slow := reg.Subscribe()
	fast := reg.Subscribe()

	// Puffer des langsamen Abonnenten volllaufen lassen
	for i := 0; i < cap(slow.ch)+5; i++ {
		reg.Broadcast("update")
	}

	// der schnelle Abonnent hat trotzdem Events bekommen
	require.NotEmpty(t, fast.Events())
	assert.Equal(t, "update", <-fast.Events())
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Subscribe()

	reg.Unsubscribe(sub)
	assert.Equal(t, 0, reg.Count())

	// zweiter Aufruf darf nicht panicen
	reg.Unsubscribe(sub)
	assert.Equal(t, 0, reg.Count())
}

func TestBroadcastAfterUnsubscribe(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Subscribe()
	reg.Unsubscribe(sub)

	// darf nicht auf den geschlossenen Kanal schreiben
	reg.Broadcast("update")

	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestCloseAllClosesEveryStream(t *testing.T) {
	reg := NewRegistry()
	first := reg.Subscribe()
	second := reg.Subscribe()

	reg.CloseAll()
	assert.Equal(t, 0, reg.Count())

	_, open := <-first.Events()
	assert.False(t, open)
	_, open = <-second.Events()
	assert.False(t, open)
}
