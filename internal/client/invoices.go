package client

import (
	"context"
	"fmt"
	"net/http"

	"panel/internal/models"
	"panel/internal/notify"
)

type Invoices struct {
	api    *Client
	state  collection[models.Invoice]
	toasts ToastSink
}

func NewInvoices(api *Client, toasts ToastSink) *Invoices {
	if toasts == nil {
		toasts = discardToasts{}
	}
	return &Invoices{api: api, toasts: toasts}
}

type invoiceListResponse struct {
	Invoices   []models.Invoice `json:"invoices"`
	Pagination models.Page      `json:"pagination"`
}

func (inv *Invoices) Fetch(ctx context.Context, params ListParams) error {
	gen := inv.state.begin()
	var resp invoiceListResponse
	err := inv.api.Get(ctx, "/api/invoices"+params.encode(), &resp)
	if !inv.state.finish(gen, resp.Invoices, resp.Pagination, err) {
		// A newer fetch superseded this one; its result wins.
		return nil
	}
	return err
}

func (inv *Invoices) Get(ctx context.Context, id string) (models.Invoice, error) {
	var out models.Invoice
	err := inv.api.Get(ctx, "/api/invoices/"+id, &out)
	return out, err
}

// DownloadPDF resolves the invoice's download URL from the redirect the
// endpoint answers with, without following it.
func (inv *Invoices) DownloadPDF(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inv.api.baseURL+"/api/invoices/"+id+"/pdf", nil)
	if err != nil {
		return "", err
	}

	// Probe with redirects disabled so the Location header survives.
	probe := *inv.api.http
	probe.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if inv.api.token != "" {
		req.Header.Set("Authorization", "Bearer "+inv.api.token)
	}
	resp, err := probe.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusMovedPermanently {
		loc := resp.Header.Get("Location")
		if loc == "" {
			return "", fmt.Errorf("pdf redirect missing location")
		}
		return loc, nil
	}
	if resp.StatusCode >= 400 {
		err := decodeError(resp)
		inv.toasts.Show(notify.Toast{
			Message: "Invoice download failed",
			Type:    models.NotificationError,
		})
		return "", err
	}
	return "", fmt.Errorf("unexpected status %d for pdf download", resp.StatusCode)
}

func (inv *Invoices) Snapshot() ([]models.Invoice, models.Page, bool, string) {
	return inv.state.snapshot()
}
