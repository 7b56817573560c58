package stats

import "time"

// SessionRecord is one finished or stopped timer session
type SessionRecord struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	PlannedSeconds int       `json:"planned_seconds"`
	AddedSeconds   float64   `json:"added_seconds"`
	Completed      bool      `json:"completed"`
	ChargeUsed     bool      `json:"charge_used"`
	PausedSeconds  int       `json:"paused_duration_seconds"`
}

// Duration is how long the session actually ran, pauses included
func (r SessionRecord) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// ActiveDuration is Duration without the time spent paused
func (r SessionRecord) ActiveDuration() time.Duration {
	active := r.Duration() - time.Duration(r.PausedSeconds)*time.Second
	if active < 0 {
		return 0
	}
	return active
}

// DailySummary holds aggregated statistics for a single day
type DailySummary struct {
	Date                   time.Time `json:"date"`
	WorkMinutes            float64   `json:"work_minutes"`
	WorkSessionsCompleted  int       `json:"work_sessions_completed"`
	BreakSessionsCompleted int       `json:"break_sessions_completed"`
	SessionsStopped        int       `json:"sessions_stopped"`
	ChargesUsed            int       `json:"charges_used"`
	CompletionRate         float64   `json:"completion_rate"`
}

// CalculateCompletionRate returns completed as a percentage of total
func CalculateCompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(completed) / float64(total) * 100.0
}
