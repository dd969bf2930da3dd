package domain

import "time"

// NotifyStatus is the per (chat, user) alert state
//
//	CLEAN   -> DIRTY    new unread message appended for the user
//	DIRTY   -> ALERTED  external notify call succeeded
//	ALERTED -> DIRTY    another unread message appended
//	any     -> CLEAN    user read the chat
type NotifyStatus string

const (
	NotifyClean   NotifyStatus = "clean"
	NotifyDirty   NotifyStatus = "dirty"
	NotifyAlerted NotifyStatus = "alerted"
)

// NotifyEntry is the stored state for one user of one chat. Generation
// advances on every transition into DIRTY or CLEAN, so an alert confirmed
// against an older generation is discarded.
type NotifyEntry struct {
	Status     NotifyStatus `json:"status"`
	Generation uint64       `json:"generation"`
	AlertedAt  *time.Time   `json:"alertedAt,omitempty"`
	Attempts   int          `json:"attempts,omitempty"`
	LastError  string       `json:"lastError,omitempty"`
}

// Notification is what the dispatcher hands to the push transport
type Notification struct {
	ChatID      string
	UserID      string
	Title       string
	Body        string
	UnreadCount int
}

func (c *Chat) notifyEntry(userID string) *NotifyEntry {
	if c.Notify == nil {
		c.Notify = make(map[string]*NotifyEntry)
	}
	e, ok := c.Notify[userID]
	if !ok {
		e = &NotifyEntry{Status: NotifyClean}
		c.Notify[userID] = e
	}
	return e
}

func (c *Chat) markDirty(userID string) {
	e := c.notifyEntry(userID)
	e.Status = NotifyDirty
	e.Generation++
	e.Attempts = 0
	e.LastError = ""
}

func (c *Chat) markClean(userID string) {
	e, ok := c.Notify[userID]
	if !ok {
		return
	}
	e.Status = NotifyClean
	e.Generation++
	e.Attempts = 0
	e.LastError = ""
}

// NotifyStatusOf returns the current state for userID (CLEAN if unknown)
func (c *Chat) NotifyStatusOf(userID string) NotifyStatus {
	if e, ok := c.Notify[userID]; ok {
		return e.Status
	}
	return NotifyClean
}

// PendingAlert reports whether userID is owed an alert and, if so, the
// generation the alert must be confirmed against. A participant is owed an
// alert while they have unread messages and have not been alerted about them.
func (c *Chat) PendingAlert(userID string) (uint64, bool) {
	if !c.HasParticipant(userID) || c.UnreadCount(userID) == 0 {
		return 0, false
	}
	e, ok := c.Notify[userID]
	if !ok {
		return 0, true
	}
	if e.Status == NotifyAlerted {
		return 0, false
	}
	return e.Generation, true
}

// ClaimAlert is PendingAlert for the dispatcher: a backlog left CLEAN (for
// example by a removal and re-add) is moved to DIRTY so the returned
// generation can be confirmed.
func (c *Chat) ClaimAlert(userID string) (uint64, bool) {
	if _, ok := c.PendingAlert(userID); !ok {
		return 0, false
	}
	if c.NotifyStatusOf(userID) != NotifyDirty {
		c.markDirty(userID)
	}
	return c.Notify[userID].Generation, true
}

// PendingAlerts lists participants currently owed an alert
func (c *Chat) PendingAlerts() []string {
	var ids []string
	for _, p := range c.Participants {
		if _, ok := c.PendingAlert(p.UserID); ok {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// ConfirmAlerted moves userID to ALERTED if the state has not moved since
// generation was claimed. Returns false when the confirmation is stale.
func (c *Chat) ConfirmAlerted(userID string, generation uint64, at time.Time) bool {
	e, ok := c.Notify[userID]
	if !ok || e.Status != NotifyDirty || e.Generation != generation {
		return false
	}
	e.Status = NotifyAlerted
	e.AlertedAt = &at
	e.Attempts = 0
	e.LastError = ""
	return true
}

// RecordAlertFailure keeps the state DIRTY and records the failed attempt
func (c *Chat) RecordAlertFailure(userID string, generation uint64, reason string) {
	e, ok := c.Notify[userID]
	if !ok || e.Generation != generation {
		return
	}
	e.Attempts++
	e.LastError = reason
}
