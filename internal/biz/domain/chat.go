package domain

import (
	"sort"
	"time"
)

// Meta keys understood by the engine. Other keys are carried through untouched.
const (
	MetaTitle     = "title"
	MetaRequestID = "requestId"
	MetaCreatedAt = "createdAt"
)

// Chat is the aggregate root: participants, ledger and notify state of one
// conversation. A chat is never deleted.
type Chat struct {
	ID           string                  `json:"id"`
	Participants []Participant           `json:"participants"`
	Messages     []Message               `json:"messages"`
	Meta         map[string]interface{}  `json:"meta"`
	Notify       map[string]*NotifyEntry `json:"notify"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// ChatIDFor derives the stable, order-independent id of the chat between two
// founding participants
func ChatIDFor(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + "_" + ids[1]
}

// ChatIDForRequest derives a chat id from an externally supplied request id
func ChatIDForRequest(requestID string) string {
	return "req_" + requestID
}

// NewChat builds a chat with its two founding participants. The counterpart
// always joins as a client.
func NewChat(id, creatorID string, creatorRole Role, counterpartID string, meta map[string]interface{}, now time.Time) *Chat {
	m := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		m[k] = v
	}
	m[MetaCreatedAt] = now.UnixMilli()

	return &Chat{
		ID: id,
		Participants: []Participant{
			{UserID: creatorID, Role: creatorRole, Founding: true, JoinedAt: now},
			{UserID: counterpartID, Role: RoleClient, Founding: true, JoinedAt: now},
		},
		Messages:  []Message{},
		Meta:      m,
		Notify:    make(map[string]*NotifyEntry),
		CreatedAt: now,
	}
}

// FindParticipant finds a participant by user ID
func (c *Chat) FindParticipant(userID string) *Participant {
	for i := range c.Participants {
		if c.Participants[i].UserID == userID {
			return &c.Participants[i]
		}
	}
	return nil
}

// HasParticipant checks membership
func (c *Chat) HasParticipant(userID string) bool {
	return c.FindParticipant(userID) != nil
}

// ParticipantIDs returns the user ids in join order
func (c *Chat) ParticipantIDs() []string {
	ids := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// OtherParticipants returns every participant id except userID
func (c *Chat) OtherParticipants(userID string) []string {
	var ids []string
	for _, p := range c.Participants {
		if p.UserID != userID {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// IsAdmin reports whether userID holds an elevated role in this chat
func (c *Chat) IsAdmin(userID string) bool {
	p := c.FindParticipant(userID)
	return p != nil && p.IsAdmin()
}

// AddParticipant adds userID with role. Adding an existing participant is a
// no-op and returns false. A backlog left from an earlier membership is owed
// an alert again.
func (c *Chat) AddParticipant(userID string, role Role, now time.Time) bool {
	if c.HasParticipant(userID) {
		return false
	}
	c.Participants = append(c.Participants, Participant{UserID: userID, Role: role, JoinedAt: now})
	if c.UnreadCount(userID) > 0 {
		c.markDirty(userID)
	}
	return true
}

// RemoveParticipant removes a non-founding participant and forgets their
// notify state
func (c *Chat) RemoveParticipant(userID string) error {
	idx := -1
	for i, p := range c.Participants {
		if p.UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return NotFound("participant")
	}
	if c.Participants[idx].Founding {
		return InvalidOperation("founding participants cannot be removed")
	}

	c.Participants = append(c.Participants[:idx:idx], c.Participants[idx+1:]...)
	delete(c.Notify, userID)
	return nil
}

// Append adds msg to the end of the ledger and dirties the addressee's
// notify state. Insertion order is the only ordering guarantee.
func (c *Chat) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	if msg.To != msg.From {
		c.markDirty(msg.To)
	}
}

// MarkRead flags every message addressed to userID as read and returns how
// many changed state. Safe to call repeatedly.
func (c *Chat) MarkRead(userID string) int {
	changed := 0
	for i := range c.Messages {
		if c.Messages[i].IsUnreadFor(userID) {
			c.Messages[i].Read = true
			changed++
		}
	}
	c.markClean(userID)
	return changed
}

// UnreadCount counts messages addressed to userID not yet read
func (c *Chat) UnreadCount(userID string) int {
	n := 0
	for i := range c.Messages {
		if c.Messages[i].IsUnreadFor(userID) {
			n++
		}
	}
	return n
}

// UnreadFor returns the unread messages addressed to userID in ledger order
func (c *Chat) UnreadFor(userID string) []Message {
	var result []Message
	for _, m := range c.Messages {
		if m.IsUnreadFor(userID) {
			result = append(result, m)
		}
	}
	return result
}

// LastMessage returns the most recently appended message, or nil
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// FindMessage finds a message by ID
func (c *Chat) FindMessage(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// MetaString returns a string meta value, or ""
func (c *Chat) MetaString(key string) string {
	if c.Meta == nil {
		return ""
	}
	s, _ := c.Meta[key].(string)
	return s
}
