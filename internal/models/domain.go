package models

type DomainStatus string

const (
	DomainActive     DomainStatus = "active"
	DomainExpired    DomainStatus = "expired"
	DomainPending    DomainStatus = "pending"
	DomainRedemption DomainStatus = "redemption"
)

type Domain struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       DomainStatus `json:"status"`
	RegisteredAt string       `json:"registeredAt"`
	ExpiresAt    string       `json:"expiresAt"`
	AutoRenew    bool         `json:"autoRenew"`
	Locked       bool         `json:"locked"`
	Nameservers  []string     `json:"nameservers,omitempty"`
}
