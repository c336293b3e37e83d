package court

import "time"

// Resolution is the persisted outcome of one analysis invocation. Verdict
// and compromise are first-class columns; the full structured analysis is
// kept alongside so historical resolutions retain tone detail.
type Resolution struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Verdict    string    `json:"verdict"`
	Compromise string    `json:"compromise"`
	Analysis   *Analysis `json:"analysis,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
