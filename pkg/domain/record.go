package domain

import "time"

// Content item status values as persisted by the invoking layer. A content
// item whose acquisition failed stays retryable ("transcript unavailable" is
// not a hard failure); a later run may succeed if the publisher updates the
// page or a mirror appears.
const (
	StatusReady       = "ready"
	StatusUnavailable = "transcript_unavailable"
)

// TranscriptRecord is the persisted form of a completed acquisition: the
// transcript itself (when one was acquired) plus the full attempt audit trail.
type TranscriptRecord struct {
	// ContentID is the correlation identifier of the content item.
	ContentID string `bson:"content_id" json:"contentId"`

	// Title is the episode/article title, when known.
	Title string `bson:"title,omitempty" json:"title,omitempty"`

	// PageURL is the canonical episode/article page, when known.
	PageURL string `bson:"page_url,omitempty" json:"pageUrl,omitempty"`

	// Status is StatusReady when a transcript was acquired, otherwise
	// StatusUnavailable.
	Status string `bson:"status" json:"status"`

	// Transcript is nil when acquisition failed.
	Transcript *Transcript `bson:"transcript,omitempty" json:"transcript,omitempty"`

	// Attempts is the ordered attempt log from the acquisition call.
	Attempts []AttemptRecord `bson:"attempts" json:"attempts"`

	// AcquiredAt is when the acquisition call completed.
	AcquiredAt time.Time `bson:"acquired_at" json:"acquiredAt"`
}
