package dataset

import "time"

// Notification announces a freshly saved dataset to subscribers such as the
// front end's cache invalidator.
type Notification struct {
	RunID   string    `json:"run_id"`
	Dataset string    `json:"dataset"`
	Kind    string    `json:"kind"`
	URI     string    `json:"uri"`
	Digest  string    `json:"digest"`
	Records int       `json:"records"`
	SavedAt time.Time `json:"saved_at"`
}

// NewNotification describes saved for run runID.
func NewNotification(runID, kind string, saved Saved, at time.Time) Notification {
	return Notification{
		RunID:   runID,
		Dataset: saved.Name,
		Kind:    kind,
		URI:     saved.URI,
		Digest:  saved.Digest,
		Records: saved.Records,
		SavedAt: at.UTC(),
	}
}

// Attributes exposes the dataset name and kind as message attributes.
func (n Notification) Attributes() map[string]string {
	return map[string]string{
		"dataset": n.Dataset,
		"kind":    n.Kind,
	}
}
