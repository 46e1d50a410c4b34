package models

import "time"

// Lead statuses, in pipeline order.
const (
	LeadStatusNew        = "new"
	LeadStatusContacted  = "contacted"
	LeadStatusQualified  = "qualified"
	LeadStatusProposal   = "proposal"
	LeadStatusClosedWon  = "closed-won"
	LeadStatusClosedLost = "closed-lost"
)

type Lead struct {
	ID            int64      `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	Company       string     `db:"company" json:"company"`
	Status        string     `db:"status" json:"status"`
	Channel       string     `db:"channel" json:"channel"` // email, phone, imessage
	LastContactAt *time.Time `db:"last_contact_at" json:"lastContactAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}
