package models

import "time"

// NewArticleKey is the draft store key for an article that has never been
// persisted remotely.
const NewArticleKey = "new-article"

// DraftKey returns the draft store key for an article id
func DraftKey(articleID string) string {
	if articleID == "" {
		return NewArticleKey
	}
	return articleID
}

// DraftSnapshot is the locally persisted copy of an in-progress draft
type DraftSnapshot struct {
	Data      *ArticleDraft `json:"data"`
	Timestamp int64         `json:"timestamp"` // epoch millis
}

// NewDraftSnapshot captures the draft at the given time
func NewDraftSnapshot(d *ArticleDraft, at time.Time) *DraftSnapshot {
	return &DraftSnapshot{
		Data:      d.Clone(),
		Timestamp: at.UnixMilli(),
	}
}

// Age returns how old the snapshot is relative to now
func (s *DraftSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.Timestamp))
}

// AutosaveStatus is the terminal-visible state of the autosave machine
type AutosaveStatus string

const (
	AutosaveIdle   AutosaveStatus = "idle"
	AutosaveSaving AutosaveStatus = "saving"
	AutosaveSaved  AutosaveStatus = "saved"
	AutosaveError  AutosaveStatus = "error"
)

// AutosaveState is owned by the autosave scheduler and read by the UI
type AutosaveState struct {
	Status            AutosaveStatus `json:"status"`
	LastSavedAt       *time.Time     `json:"last_saved_at,omitempty"`
	HasUnsavedChanges bool           `json:"has_unsaved_changes"`
}
