package data

// PendingJob ist eine persistierte, noch nicht zugestellte Erinnerung.
// Zeitstempel sind naive lokale Wanduhrzeit mit Minutengenauigkeit.
type PendingJob struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Msg         string `json:"msg"`
	ScheduledAt string `json:"scheduledAt"`
	CreatedAt   string `json:"createdAt"`

	// Altformate früherer Versionen; werden beim Laden toleriert
	// und vom Reconciler in ScheduledAt überführt.
	LocalTime  string `json:"localTime,omitempty"`
	LegacyTime string `json:"time,omitempty"`
}
