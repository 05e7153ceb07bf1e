package client

import (
	"context"

	"panel/internal/models"
	"panel/internal/notify"
)

type PaymentMethods struct {
	api    *Client
	state  collection[models.PaymentMethod]
	toasts ToastSink
}

func NewPaymentMethods(api *Client, toasts ToastSink) *PaymentMethods {
	if toasts == nil {
		toasts = discardToasts{}
	}
	return &PaymentMethods{api: api, toasts: toasts}
}

type AddPaymentMethod struct {
	CardNumber string `json:"cardNumber"`
	ExpMonth   int    `json:"expMonth"`
	ExpYear    int    `json:"expYear"`
	CVC        string `json:"cvc"`
	HolderName string `json:"holderName"`
}

type paymentListResponse struct {
	PaymentMethods []models.PaymentMethod `json:"paymentMethods"`
}

func (pm *PaymentMethods) Fetch(ctx context.Context) error {
	gen := pm.state.begin()
	var resp paymentListResponse
	err := pm.api.Get(ctx, "/api/payment-methods", &resp)
	if !pm.state.finish(gen, resp.PaymentMethods, models.PageOf(len(resp.PaymentMethods), 1, len(resp.PaymentMethods)+1), err) {
		return nil
	}
	return err
}

func (pm *PaymentMethods) Add(ctx context.Context, req AddPaymentMethod) (models.PaymentMethod, error) {
	var out models.PaymentMethod
	err := pm.api.Post(ctx, "/api/payment-methods", req, &out)
	if err != nil {
		pm.toasts.Show(notify.Toast{
			Message: "Could not add payment method",
			Type:    models.NotificationError,
		})
	}
	return out, err
}

func (pm *PaymentMethods) Delete(ctx context.Context, id string) error {
	err := pm.api.Delete(ctx, "/api/payment-methods/"+id)
	if err != nil {
		pm.toasts.Show(notify.Toast{
			Message: "Could not remove payment method",
			Type:    models.NotificationError,
		})
	}
	return err
}

func (pm *PaymentMethods) SetDefault(ctx context.Context, id string) (models.PaymentMethod, error) {
	var out models.PaymentMethod
	err := pm.api.Patch(ctx, "/api/payment-methods/"+id+"/default", nil, &out)
	if err != nil {
		pm.toasts.Show(notify.Toast{
			Message: "Could not change default payment method",
			Type:    models.NotificationError,
		})
	}
	return out, err
}

func (pm *PaymentMethods) Snapshot() ([]models.PaymentMethod, models.Page, bool, string) {
	return pm.state.snapshot()
}
