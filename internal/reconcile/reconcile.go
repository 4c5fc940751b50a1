package reconcile

import (
	"strings"
	"time"

	"djp.chapter42.de/beeper/internal/data"
	"djp.chapter42.de/beeper/internal/logger"
	"go.uber.org/zap"
)

// Scheduler armiert einen Timer für einen noch ausstehenden Job.
type Scheduler interface {
	Schedule(job data.PendingJob)
}

// JobStore ist die für die Reconciliation nötige Sicht auf den Store.
type JobStore interface {
	Load() []data.PendingJob
	Replace(jobs []data.PendingJob)
}

// Run läuft genau einmal beim Prozessstart, bevor der Server Anfragen
// annimmt: Altformate migrieren, Unlesbares und Abgelaufenes verwerfen,
// zukünftige Jobs neu einplanen und Korrekturen in einem einzigen
// Schreibvorgang persistieren.
func Run(st JobStore, disp Scheduler) {
	jobs := st.Load()
	if len(jobs) == 0 {
		return
	}

	kept := make([]data.PendingJob, 0, len(jobs))
	changed := false
	now := time.Now()

	for _, raw := range jobs {
		job, ok := Normalize(raw)
		if !ok {
			logger.Log.Warn("Verwerfe Eintrag mit unlesbarem Zeitstempel:", zap.String("id", raw.ID))
			changed = true
			continue
		}
		if job != raw {
			changed = true
		}

		at, err := data.ParseLocalMinute(job.ScheduledAt)
		if err != nil {
			logger.Log.Warn("Verwerfe Eintrag mit unlesbarem Zeitstempel:", zap.String("id", job.ID))
			changed = true
			continue
		}
		if !at.After(now) {
			// abgelaufen: kein Zustellversuch, keine Wiederholung
			logger.Log.Info("Verwerfe abgelaufenen Eintrag:", zap.String("id", job.ID), zap.String("scheduledAt", job.ScheduledAt))
			changed = true
			continue
		}

		kept = append(kept, job)
	}

	// Erst die korrigierte Liste persistieren, dann Timer armieren: ein
	// sofort feuernder Timer darf seinen Job nicht per spätem Rewrite
	// wiederbeleben.
	if changed {
		st.Replace(kept)
	}
	for _, job := range kept {
		disp.Schedule(job)
	}
	logger.Log.Info("Reconciliation abgeschlossen:", zap.Int("geladen", len(jobs)), zap.Int("eingeplant", len(kept)))
}

// Normalize überführt einen rohen persistierten Eintrag in die kanonische
// Form: Altfelder localTime/time wandern nach scheduledAt, zonenbehaftete
// Zeitstempel werden zu naiver lokaler Minutenzeit. ok ist false, wenn am
// Ende kein lesbarer Zielzeitpunkt übrig bleibt; solche Einträge werden
// nicht behalten.
func Normalize(raw data.PendingJob) (data.PendingJob, bool) {
	job := raw

	if job.ScheduledAt == "" && job.LocalTime != "" {
		job.ScheduledAt = job.LocalTime
	}
	job.LocalTime = ""

	if job.ScheduledAt == "" && job.LegacyTime != "" {
		if s, ok := canonicalLocalMinute(job.LegacyTime); ok {
			job.ScheduledAt = s
		}
	}
	job.LegacyTime = ""

	// createdAt mit UTC-Marker in lokale Minutenform bringen
	if strings.HasSuffix(job.CreatedAt, "Z") {
		if t, err := time.Parse(time.RFC3339, job.CreatedAt); err == nil {
			job.CreatedAt = data.FormatLocalMinute(t.Local())
		}
	}

	s, ok := canonicalLocalMinute(job.ScheduledAt)
	if !ok {
		return data.PendingJob{}, false
	}
	job.ScheduledAt = s

	return job, true
}

func canonicalLocalMinute(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return data.FormatLocalMinute(t.Local()), true
	}
	s = data.NormalizeLocalMinute(s)
	if _, err := data.ParseLocalMinute(s); err != nil {
		return "", false
	}
	return s, true
}
