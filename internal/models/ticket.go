package models

type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketPending  TicketStatus = "pending"
	TicketResolved TicketStatus = "resolved"
	TicketClosed   TicketStatus = "closed"
)

type TicketPriority string

const (
	TicketLow    TicketPriority = "low"
	TicketMedium TicketPriority = "medium"
	TicketHigh   TicketPriority = "high"
	TicketUrgent TicketPriority = "urgent"
)

type Ticket struct {
	ID         string         `json:"id"`
	Subject    string         `json:"subject"`
	Department string         `json:"department"`
	Status     TicketStatus   `json:"status"`
	Priority   TicketPriority `json:"priority"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
	Replies    []TicketReply  `json:"replies,omitempty"`
}

type TicketReply struct {
	ID          string       `json:"id"`
	Author      string       `json:"author"`
	Staff       bool         `json:"staff"`
	Message     string       `json:"message"`
	CreatedAt   string       `json:"createdAt"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}
