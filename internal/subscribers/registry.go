package subscribers

import (
	"sync"

	"djp.chapter42.de/beeper/internal/logger"
	"go.uber.org/zap"
)

// Subscriber ist eine langlebige Beobachter-Verbindung. Events ist nur ein
// "etwas hat sich geändert"-Signal, kein wertetragender Strom.
type Subscriber struct {
	ch chan string
}

func (s *Subscriber) Events() <-chan string {
	return s.ch
}

// Registry hält alle lebenden Abonnenten. Broadcast ist best effort: ein
// voller oder toter Abonnent darf weder die anderen noch den Aufrufer
// blockieren.
type Registry struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[*Subscriber]struct{})}
}

func (r *Registry) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan string, 8)}

	r.mu.Lock()
	r.subs[sub] = struct{}{}
	count := len(r.subs)
	r.mu.Unlock()

	logger.Log.Debug("Neuer Abonnent registriert:", zap.Int("count", count))
	return sub
}

// Unsubscribe ist idempotent; der Event-Kanal wird beim ersten Aufruf
// geschlossen.
func (r *Registry) Unsubscribe(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub]; ok {
		delete(r.subs, sub)
		close(sub.ch)
	}
}

func (r *Registry) Broadcast(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sub := range r.subs {
		select {
		case sub.ch <- event:
		default:
			// Abonnent kommt nicht hinterher, Signal verfällt
		}
	}
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// CloseAll trennt beim Herunterfahren alle Abonnenten.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sub := range r.subs {
		delete(r.subs, sub)
		close(sub.ch)
	}
}
