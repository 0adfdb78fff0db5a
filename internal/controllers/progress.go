package controllers

import (
	"time"

	"vip_transport/internal/models"
)

// Progress summary shapes. Daily types aggregate by session within the
// requested event date; one-time types are per-assignment. Custom
// check-ins are unbounded, so the type level never reports completed and
// they are listed individually instead.

type SessionProgress struct {
	Completed bool       `json:"completed"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

type DailyTypeProgress struct {
	Completed bool                       `json:"completed"`
	Sessions  map[string]SessionProgress `json:"sessions"`
}

type OneTimeTypeProgress struct {
	Completed bool       `json:"completed"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

type CustomCheckinEntry struct {
	ID        uint      `json:"id"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

type CustomProgress struct {
	Completed bool                 `json:"completed"` // always false: unbounded
	Checkins  []CustomCheckinEntry `json:"checkins"`
}

type AssignmentProgress struct {
	EventDate string                         `json:"event_date"`
	Daily     map[string]DailyTypeProgress   `json:"daily"`
	OneTime   map[string]OneTimeTypeProgress `json:"one_time"`
	Custom    CustomProgress                 `json:"custom"`
}

// BuildProgress folds an assignment's check-in history into the per-date
// summary. Sessions key by session_id with "default" standing in for the
// un-sessioned slot; a daily type counts as completed once any session
// exists for the date.
func BuildProgress(checkins []models.Checkin, eventDate string) AssignmentProgress {
	progress := AssignmentProgress{
		EventDate: eventDate,
		Daily:     make(map[string]DailyTypeProgress, len(models.DailyCheckinTypes)),
		OneTime:   make(map[string]OneTimeTypeProgress, len(models.OneTimeCheckinTypes)),
		Custom:    CustomProgress{Checkins: []CustomCheckinEntry{}},
	}
	for _, t := range models.DailyCheckinTypes {
		progress.Daily[t] = DailyTypeProgress{Sessions: make(map[string]SessionProgress)}
	}
	for _, t := range models.OneTimeCheckinTypes {
		progress.OneTime[t] = OneTimeTypeProgress{}
	}

	for i := range checkins {
		ci := &checkins[i]
		switch models.ClassifyCheckin(ci.CheckinType) {
		case models.CheckinClassDaily:
			if ci.EventDate == nil || *ci.EventDate != eventDate {
				continue
			}
			entry := progress.Daily[ci.CheckinType]
			session := "default"
			if ci.SessionID != nil {
				session = *ci.SessionID
			}
			ts := ci.Timestamp
			entry.Sessions[session] = SessionProgress{Completed: true, Timestamp: &ts, Notes: ci.Notes}
			entry.Completed = true
			progress.Daily[ci.CheckinType] = entry

		case models.CheckinClassOneTime:
			ts := ci.Timestamp
			progress.OneTime[ci.CheckinType] = OneTimeTypeProgress{
				Completed: true,
				Timestamp: &ts,
				Notes:     ci.Notes,
			}

		case models.CheckinClassUnlimited:
			label := ""
			if ci.CustomLabel != nil {
				label = *ci.CustomLabel
			}
			progress.Custom.Checkins = append(progress.Custom.Checkins, CustomCheckinEntry{
				ID:        ci.ID,
				Label:     label,
				Timestamp: ci.Timestamp,
				Notes:     ci.Notes,
			})
		}
		// Legacy types fall through: visible in raw history, not in the
		// progress summary.
	}

	return progress
}
