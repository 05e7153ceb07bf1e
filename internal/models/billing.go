package models

type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoid    InvoiceStatus = "void"
)

type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"number"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Status    InvoiceStatus `json:"status"`
	IssuedAt  string        `json:"issuedAt"`
	DueAt     string        `json:"dueAt"`
	PaidAt    string        `json:"paidAt,omitempty"`
	LineItems []LineItem    `json:"lineItems,omitempty"`
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

type PaymentMethod struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"expMonth"`
	ExpYear   int    `json:"expYear"`
	IsDefault bool   `json:"isDefault"`
	AddedAt   string `json:"addedAt"`
}
