package api

import "panel/internal/models"

// Seed fixtures. Every list endpoint derives its responses from these
// slices; mutations edit the in-memory copies and are not durable beyond
// the process.

var seedUsers = []userRecord{
	{
		user: models.User{
			ID:        "usr_1001",
			Email:     "demo@example.com",
			FirstName: "Dana",
			LastName:  "Whitfield",
			Company:   "Whitfield Media",
			Phone:     "+1 555 0142",
			CreatedAt: "2021-03-18T09:24:00Z",
		},
		password: "panel-demo",
	},
	{
		user: models.User{
			ID:        "usr_1002",
			Email:     "sam@acme.test",
			FirstName: "Sam",
			LastName:  "Okafor",
			Company:   "Acme Hosting",
			CreatedAt: "2022-11-02T14:05:00Z",
		},
		password: "correct-horse",
	},
}

var seedDomains = []models.Domain{
	{
		ID:           "dom_2001",
		Name:         "whitfieldmedia.com",
		Status:       models.DomainActive,
		RegisteredAt: "2021-03-20T00:00:00Z",
		ExpiresAt:    "2027-03-20T00:00:00Z",
		AutoRenew:    true,
		Locked:       true,
		Nameservers:  []string{"ns1.panelhost.net", "ns2.panelhost.net"},
	},
	{
		ID:           "dom_2002",
		Name:         "danaphotography.net",
		Status:       models.DomainActive,
		RegisteredAt: "2022-06-11T00:00:00Z",
		ExpiresAt:    "2026-06-11T00:00:00Z",
		AutoRenew:    false,
		Nameservers:  []string{"ns1.panelhost.net", "ns2.panelhost.net"},
	},
	{
		ID:           "dom_2003",
		Name:         "whitfield.shop",
		Status:       models.DomainExpired,
		RegisteredAt: "2023-01-05T00:00:00Z",
		ExpiresAt:    "2026-01-05T00:00:00Z",
		AutoRenew:    false,
	},
	{
		ID:           "dom_2004",
		Name:         "mediakit.io",
		Status:       models.DomainPending,
		RegisteredAt: "2026-08-01T00:00:00Z",
		ExpiresAt:    "2027-08-01T00:00:00Z",
		AutoRenew:    true,
	},
	{
		ID:           "dom_2005",
		Name:         "oldportfolio.org",
		Status:       models.DomainRedemption,
		RegisteredAt: "2019-09-30T00:00:00Z",
		ExpiresAt:    "2025-09-30T00:00:00Z",
		AutoRenew:    false,
	},
}

var seedInvoices = []models.Invoice{
	{
		ID: "inv_3001", Number: "2026-0114", Amount: 149.90, Currency: "USD",
		Status: models.InvoicePaid, IssuedAt: "2026-01-14T00:00:00Z",
		DueAt: "2026-01-28T00:00:00Z", PaidAt: "2026-01-16T10:12:00Z",
		LineItems: []models.LineItem{
			{Description: "Shared hosting (annual)", Quantity: 1, UnitPrice: 119.90, Total: 119.90},
			{Description: "Domain renewal whitfieldmedia.com", Quantity: 1, UnitPrice: 30.00, Total: 30.00},
		},
	},
	{
		ID: "inv_3002", Number: "2026-0458", Amount: 12.00, Currency: "USD",
		Status: models.InvoiceUnpaid, IssuedAt: "2026-07-02T00:00:00Z",
		DueAt: "2026-09-02T00:00:00Z",
		LineItems: []models.LineItem{
			{Description: "Mailbox add-on", Quantity: 2, UnitPrice: 6.00, Total: 12.00},
		},
	},
	{
		ID: "inv_3003", Number: "2026-0521", Amount: 89.00, Currency: "USD",
		Status: models.InvoiceOverdue, IssuedAt: "2026-05-19T00:00:00Z",
		DueAt: "2026-06-02T00:00:00Z",
		LineItems: []models.LineItem{
			{Description: "VPS starter (quarterly)", Quantity: 1, UnitPrice: 89.00, Total: 89.00},
		},
	},
	{
		ID: "inv_3004", Number: "2025-1203", Amount: 30.00, Currency: "USD",
		Status: models.InvoicePaid, IssuedAt: "2025-12-03T00:00:00Z",
		DueAt: "2025-12-17T00:00:00Z", PaidAt: "2025-12-03T08:41:00Z",
		LineItems: []models.LineItem{
			{Description: "Domain registration mediakit.io", Quantity: 1, UnitPrice: 30.00, Total: 30.00},
		},
	},
	{
		ID: "inv_3005", Number: "2025-0990", Amount: 0, Currency: "USD",
		Status: models.InvoiceVoid, IssuedAt: "2025-10-21T00:00:00Z",
		DueAt: "2025-11-04T00:00:00Z",
	},
}

var seedPayments = []models.PaymentMethod{
	{
		ID: "pm_4001", Type: "card", Brand: "visa", Last4: "4242",
		ExpMonth: 4, ExpYear: 2028, IsDefault: true,
		AddedAt: "2023-02-10T11:00:00Z",
	},
	{
		ID: "pm_4002", Type: "card", Brand: "mastercard", Last4: "5100",
		ExpMonth: 11, ExpYear: 2026, IsDefault: false,
		AddedAt: "2024-09-01T16:30:00Z",
	},
	{
		ID: "pm_4003", Type: "paypal", Brand: "paypal", Last4: "",
		IsDefault: false, AddedAt: "2025-05-22T09:15:00Z",
	},
}

var seedTickets = []models.Ticket{
	{
		ID: "tkt_5001", Subject: "Email delivery delays", Department: "support",
		Status: models.TicketOpen, Priority: models.TicketHigh,
		CreatedAt: "2026-08-20T08:02:00Z", UpdatedAt: "2026-08-21T12:45:00Z",
		Replies: []models.TicketReply{
			{
				ID: "rpl_6001", Author: "Dana Whitfield", Staff: false,
				Message:   "Outbound mail from our shared plan has been arriving hours late since Tuesday.",
				CreatedAt: "2026-08-20T08:02:00Z",
			},
			{
				ID: "rpl_6002", Author: "Priti (Support)", Staff: true,
				Message:   "Thanks for the report, we are checking the outbound queue on mx2.",
				CreatedAt: "2026-08-21T12:45:00Z",
			},
		},
	},
	{
		ID: "tkt_5002", Subject: "Question about VPS upgrade path", Department: "sales",
		Status: models.TicketPending, Priority: models.TicketMedium,
		CreatedAt: "2026-07-30T15:20:00Z", UpdatedAt: "2026-08-01T10:00:00Z",
		Replies: []models.TicketReply{
			{
				ID: "rpl_6003", Author: "Dana Whitfield", Staff: false,
				Message:   "Can I move from the starter VPS to the pro tier without reinstalling?",
				CreatedAt: "2026-07-30T15:20:00Z",
			},
		},
	},
	{
		ID: "tkt_5003", Subject: "Invoice 2026-0521 looks wrong", Department: "billing",
		Status: models.TicketResolved, Priority: models.TicketLow,
		CreatedAt: "2026-06-05T09:00:00Z", UpdatedAt: "2026-06-06T17:30:00Z",
	},
	{
		ID: "tkt_5004", Subject: "Old portfolio domain recovery", Department: "support",
		Status: models.TicketClosed, Priority: models.TicketMedium,
		CreatedAt: "2025-10-02T13:11:00Z", UpdatedAt: "2025-10-09T08:00:00Z",
	},
}

var seedNotifications = []models.Notification{
	{
		ID: "ntf_7001", Title: "Invoice overdue",
		Message: "Invoice 2026-0521 is past its due date.",
		Type:    models.NotificationWarning, Category: "billing",
		Priority: models.PriorityHigh, IsRead: false,
		Timestamp: "2026-06-03T00:10:00Z", ActionURL: "/billing/invoices/inv_3003",
	},
	{
		ID: "ntf_7002", Title: "Domain expiring soon",
		Message: "danaphotography.net expires in under a year and auto-renew is off.",
		Type:    models.NotificationInfo, Category: "domains",
		Priority: models.PriorityMedium, IsRead: false,
		Timestamp: "2026-07-11T06:00:00Z", ActionURL: "/domains/dom_2002",
	},
	{
		ID: "ntf_7003", Title: "Support reply",
		Message: "A staff member replied to ticket \"Email delivery delays\".",
		Type:    models.NotificationSuccess, Category: "support",
		Priority: models.PriorityMedium, IsRead: true,
		Timestamp: "2026-08-21T12:45:30Z", ActionURL: "/support/tickets/tkt_5001",
	},
	{
		ID: "ntf_7004", Title: "Payment received",
		Message: "Payment for invoice 2026-0114 was processed.",
		Type:    models.NotificationSuccess, Category: "billing",
		Priority: models.PriorityLow, IsRead: true,
		Timestamp: "2026-01-16T10:12:05Z",
	},
	{
		ID: "ntf_7005", Title: "Scheduled maintenance",
		Message: "Shared hosting cluster maintenance on September 14, 02:00-04:00 UTC.",
		Type:    models.NotificationInfo, Category: "system",
		Priority: models.PriorityLow, IsRead: false,
		Timestamp: "2026-08-28T18:00:00Z",
	},
}

// loadSeeds copies the seed slices into the registry so mutations never
// touch the package-level fixtures (tests build many registries).
func (reg *Registry) loadSeeds() {
	reg.users = append([]userRecord(nil), seedUsers...)
	reg.domains = cloneDomains(seedDomains)
	reg.invoices = cloneInvoices(seedInvoices)
	reg.payments = append([]models.PaymentMethod(nil), seedPayments...)
	reg.tickets = cloneTickets(seedTickets)
	reg.notifs = cloneNotifications(seedNotifications)
}

func cloneDomains(in []models.Domain) []models.Domain {
	out := append([]models.Domain(nil), in...)
	for i := range out {
		out[i].Nameservers = append([]string(nil), out[i].Nameservers...)
	}
	return out
}

func cloneInvoices(in []models.Invoice) []models.Invoice {
	out := append([]models.Invoice(nil), in...)
	for i := range out {
		out[i].LineItems = append([]models.LineItem(nil), out[i].LineItems...)
	}
	return out
}

func cloneTickets(in []models.Ticket) []models.Ticket {
	out := append([]models.Ticket(nil), in...)
	for i := range out {
		replies := append([]models.TicketReply(nil), out[i].Replies...)
		for j := range replies {
			replies[j].Attachments = append([]models.Attachment(nil), replies[j].Attachments...)
		}
		out[i].Replies = replies
	}
	return out
}

func cloneNotifications(in []models.Notification) []models.Notification {
	out := append([]models.Notification(nil), in...)
	for i := range out {
		if out[i].Metadata != nil {
			m := make(map[string]string, len(out[i].Metadata))
			for k, v := range out[i].Metadata {
				m[k] = v
			}
			out[i].Metadata = m
		}
	}
	return out
}
