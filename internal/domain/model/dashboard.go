//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// DashboardSummary is the signed-in landing view.
type DashboardSummary struct {
	MyEvents       []Event `json:"my_events"`
	Featured       []Event `json:"featured"`
	Upcoming       []Event `json:"upcoming"`
	MyEventCount   int     `json:"my_event_count"`
	PublishedCount int     `json:"published_count"`
	DraftCount     int     `json:"draft_count"`
}
