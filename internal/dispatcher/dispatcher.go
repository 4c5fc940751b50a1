package dispatcher

import (
	"sync"
	"time"

	"djp.chapter42.de/beeper/internal/backoff"
	"djp.chapter42.de/beeper/internal/data"
	"djp.chapter42.de/beeper/internal/logger"
	"go.uber.org/zap"
)

// Notifier stellt eine Nachricht tatsächlich zu (z.B. per SMTP).
type Notifier interface {
	Send(to, content, kind string) error
}

// Remover entfernt einen Job endgültig aus der Pending-Liste.
type Remover interface {
	Remove(id string)
}

// DeliveryKind wird dem Notifier als Zustellungsart mitgegeben.
const DeliveryKind = "Termingerechte Zustellung"

// Dispatcher hält pro Job höchstens einen einmalig feuernden Timer. Die
// Timer-Tabelle ist zugleich die Stornierungs-Tabelle: feuert ein Timer,
// dessen Eintrag bereits entfernt wurde, wird nicht mehr zugestellt.
type Dispatcher struct {
	mu     sync.Mutex
	timers map[string]*time.Timer

	store  Remover
	notif  Notifier
	policy backoff.Policy
}

func New(store Remover, notif Notifier, policy backoff.Policy) *Dispatcher {
	if policy == nil {
		policy = backoff.NoRetry{}
	}
	return &Dispatcher{
		timers: make(map[string]*time.Timer),
		store:  store,
		notif:  notif,
		policy: policy,
	}
}

// Schedule parst den Zielzeitpunkt und armiert einen Timer. Ein Job mit
// unlesbarem Zeitstempel wird sofort aus der Liste entfernt.
func (d *Dispatcher) Schedule(job data.PendingJob) {
	at, err := data.ParseLocalMinute(job.ScheduledAt)
	if err != nil {
		logger.Log.Warn("Job mit unlesbarem Zeitstempel wird verworfen:", zap.String("id", job.ID), zap.Error(err))
		d.store.Remove(job.ID)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.timers[job.ID]; ok {
		// höchstens ein Timer pro Job
		return
	}
	d.timers[job.ID] = time.AfterFunc(time.Until(at), func() { d.fire(job) })
	logger.Log.Info("Zustellung eingeplant:", zap.String("id", job.ID), zap.String("scheduledAt", job.ScheduledAt))
}

func (d *Dispatcher) fire(job data.PendingJob) {
	d.mu.Lock()
	_, armed := d.timers[job.ID]
	delete(d.timers, job.ID)
	d.mu.Unlock()

	if !armed {
		// zwischenzeitlich storniert
		return
	}

	for attempts := 0; ; attempts++ {
		err := d.notif.Send(job.Email, job.Msg, DeliveryKind)
		if err == nil {
			logger.Log.Info("Zustellung erfolgreich:", zap.String("id", job.ID), zap.String("email", job.Email))
			d.store.Remove(job.ID)
			return
		}
		logger.Log.Error("Zustellung fehlgeschlagen:", zap.String("id", job.ID), zap.Error(err))

		delay, retry := d.policy.NextAttempt(attempts)
		if !retry {
			// Der Job bleibt ohne Timer in der Liste stehen und wird erst
			// beim nächsten Neustart wieder betrachtet.
			logger.Log.Warn("Keine weiteren Zustellversuche:", zap.String("id", job.ID))
			return
		}
		time.Sleep(delay)
	}
}

// Cancel stoppt den armierten Timer des Jobs, falls vorhanden.
func (d *Dispatcher) Cancel(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[id]; ok {
		t.Stop()
		delete(d.timers, id)
		logger.Log.Debug("Timer storniert:", zap.String("id", id))
	}
}

// Armed meldet, ob für den Job aktuell ein Timer läuft.
func (d *Dispatcher) Armed(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[id]
	return ok
}

// StopAll stoppt beim Herunterfahren alle Timer.
func (d *Dispatcher) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}
