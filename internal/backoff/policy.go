package backoff

import "time"

// Policy entscheidet nach einem fehlgeschlagenen Zustellversuch, ob und
// nach welcher Wartezeit erneut zugestellt wird.
type Policy interface {
	NextAttempt(attempts int) (time.Duration, bool)
}

// NoRetry ist die Standard-Policy: ein Fehlschlag ist endgültig, der Job
// bleibt ohne Timer in der Liste stehen. Bewusst so gewählt, damit keine
// doppelten Zustellungen entstehen.
type NoRetry struct{}

func (NoRetry) NextAttempt(int) (time.Duration, bool) {
	return 0, false
}

// Exponential versucht bis zu MaxAttempts Wiederholungen mit exponentiell
// wachsender, auf MaxDelay gedeckelter Wartezeit.
type Exponential struct {
	MaxAttempts int
}

func (e Exponential) NextAttempt(attempts int) (time.Duration, bool) {
	if attempts >= e.MaxAttempts {
		return 0, false
	}
	return Min(ExponentialBackoff(attempts), MaxDelay), true
}

// Sinus versucht bis zu MaxAttempts Wiederholungen mit oszillierender
// Wartezeit samt Jitter.
type Sinus struct {
	MaxAttempts int
}

func (s Sinus) NextAttempt(attempts int) (time.Duration, bool) {
	if attempts >= s.MaxAttempts {
		return 0, false
	}
	return SinusBackoff(attempts), true
}
