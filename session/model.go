package session

// Session is the lifecycle record tracked per client.
//
// LastActivity is an epoch timestamp in milliseconds. SessionID never changes
// after creation.
type Session struct {
	SessionID    string `json:"session_id"`
	LastActivity int64  `json:"last_activity_timestamp"`
	IsActive     bool   `json:"is_active"`
}

// Clone returns a copy of s, or nil when s is nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
