package court

import "time"

// Message is one immutable turn in a session's log. Seq is assigned by the
// store and breaks timestamp ties, so (CreatedAt, Seq) is a total order per
// session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    Role      `json:"sender"`
	Content   string    `json:"content"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"createdAt"`
}
