package models

import "time"

// RecipientType distinguishes directory entries.
type RecipientType string

const (
	RecipientGroup   RecipientType = "group"
	RecipientStudent RecipientType = "student"
	RecipientFaculty RecipientType = "faculty"
)

// Recipient is an addressable entry of the message directory.
type Recipient struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Type RecipientType `json:"type"`
}

// Message is a broadcast sent from the admin panel.
type Message struct {
	ID         string      `json:"id"`
	Recipients []Recipient `json:"recipients"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	SentAt     time.Time   `json:"sent_at"`
	Sender     string      `json:"sender"`
	Delivered  int         `json:"delivered"`
}

// SendMessageRequest is the send payload.
type SendMessageRequest struct {
	RecipientIDs []string `json:"recipient_ids" validate:"required,min=1,dive,required"`
	Subject      string   `json:"subject" validate:"required"`
	Body         string   `json:"body" validate:"required"`
}
