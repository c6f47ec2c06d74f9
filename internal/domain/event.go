package domain

// Stream names (must match the form/posting subsystem).
const (
	StreamPostsSubmitted  = "stream:posts:submitted"
	StreamPostsEvents     = "stream:posts:events"
	StreamPostsQuarantine = "stream:posts:quarantine"
)

// Post change event types.
const (
	EventPostCreated  = "created"
	EventPostApproved = "approved"
)

// PostEvent announces a change in the posts collection. Subscribers re-read
// the list on every event; the event itself carries just enough to log.
type PostEvent struct {
	Type      string `json:"type"`
	PostID    string `json:"post_id"`
	GoodCount int64  `json:"good_count,omitempty"`
}

// QuarantinedPost wraps a submission that failed shape validation. It is
// parked on the quarantine stream instead of entering the store.
type QuarantinedPost struct {
	Reason string `json:"reason"`
	Raw    string `json:"raw"`
}

// StreamMessage is a raw entry read from a Redis stream.
type StreamMessage struct {
	ID   string
	Data string
}
