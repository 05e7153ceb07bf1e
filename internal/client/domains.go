package client

import (
	"context"

	"panel/internal/models"
	"panel/internal/notify"
)

type Domains struct {
	api    *Client
	state  collection[models.Domain]
	toasts ToastSink
}

func NewDomains(api *Client, toasts ToastSink) *Domains {
	if toasts == nil {
		toasts = discardToasts{}
	}
	return &Domains{api: api, toasts: toasts}
}

type domainListResponse struct {
	Domains    []models.Domain `json:"domains"`
	Pagination models.Page     `json:"pagination"`
}

func (d *Domains) Fetch(ctx context.Context, params ListParams) error {
	gen := d.state.begin()
	var resp domainListResponse
	err := d.api.Get(ctx, "/api/domains"+params.encode(), &resp)
	if !d.state.finish(gen, resp.Domains, resp.Pagination, err) {
		return nil
	}
	return err
}

func (d *Domains) Get(ctx context.Context, id string) (models.Domain, error) {
	var out models.Domain
	err := d.api.Get(ctx, "/api/domains/"+id, &out)
	return out, err
}

func (d *Domains) Renew(ctx context.Context, id string) (models.Domain, error) {
	var out models.Domain
	err := d.api.Post(ctx, "/api/domains/"+id+"/renew", nil, &out)
	if err != nil {
		d.toasts.Show(notify.Toast{
			Message: "Could not renew domain",
			Type:    models.NotificationError,
		})
	}
	return out, err
}

func (d *Domains) Snapshot() ([]models.Domain, models.Page, bool, string) {
	return d.state.snapshot()
}
