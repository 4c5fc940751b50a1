package store

import (
	"encoding/json"
	"os"
	"sync"

	"djp.chapter42.de/beeper/internal/data"
	"djp.chapter42.de/beeper/internal/logger"
	"go.uber.org/zap"
)

// Broadcaster erhält ein Signal, sobald sich die Pending-Liste ändert.
type Broadcaster interface {
	Broadcast(event string)
}

// Store verwaltet die Pending-Liste als einzelne JSON-Datei. Jede Mutation
// läuft als Laden→Ändern→Schreiben komplett unter dem Mutex, damit sich
// zwei Aufrufer nicht gegenseitig die Schreibvorgänge überschreiben.
type Store struct {
	mu     sync.Mutex
	path   string
	notify Broadcaster
}

func New(path string, notify Broadcaster) *Store {
	return &Store{path: path, notify: notify}
}

// Load liefert den rohen Dateiinhalt, inklusive etwaiger Altfelder.
// Eine fehlende oder unlesbare Datei gilt als leere Liste.
func (s *Store) Load() []data.PendingJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// List liefert die aktuell persistierten Jobs für lesende Abfragen.
func (s *Store) List() []data.PendingJob {
	s.mu.Lock()
	jobs := s.loadLocked()
	s.mu.Unlock()

	if jobs == nil {
		jobs = []data.PendingJob{}
	}
	return jobs
}

// Add hängt den Job an und schreibt die komplette Liste zurück.
func (s *Store) Add(job data.PendingJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := s.loadLocked()
	jobs = append(jobs, job)
	s.saveLocked(jobs)
}

// Remove filtert den Job mit der gegebenen ID heraus. Eine unbekannte ID
// ist kein Fehler; dann wird weder geschrieben noch benachrichtigt.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	jobs := s.loadLocked()
	kept := make([]data.PendingJob, 0, len(jobs))
	for _, job := range jobs {
		if job.ID != id {
			kept = append(kept, job)
		}
	}
	changed := len(kept) != len(jobs)
	if changed {
		s.saveLocked(kept)
	}
	s.mu.Unlock()

	if changed {
		s.broadcast()
	}
}

// Replace schreibt die übergebene Liste in einem einzigen Durchgang.
func (s *Store) Replace(jobs []data.PendingJob) {
	s.mu.Lock()
	s.saveLocked(jobs)
	s.mu.Unlock()

	s.broadcast()
}

func (s *Store) loadLocked() []data.PendingJob {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Error("Fehler beim Lesen der Pending-Datei:", zap.String("filename", s.path), zap.Error(err))
		}
		return nil
	}

	var jobs []data.PendingJob
	if err := json.Unmarshal(raw, &jobs); err != nil {
		logger.Log.Error("Pending-Datei nicht lesbar, behandle sie als leer:", zap.String("filename", s.path), zap.Error(err))
		return nil
	}
	return jobs
}

func (s *Store) saveLocked(jobs []data.PendingJob) {
	buf, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		logger.Log.Error("Fehler beim Serialisieren der Pending-Liste:", zap.Error(err))
		return
	}

	if err := os.WriteFile(s.path, buf, 0644); err != nil {
		logger.Log.Error("Fehler beim Speichern der Pending-Liste:", zap.String("filename", s.path), zap.Error(err))
	}
}

func (s *Store) broadcast() {
	if s.notify != nil {
		s.notify.Broadcast("update")
	}
}
