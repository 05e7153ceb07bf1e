package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"panel/internal/models"
	"panel/internal/notify"
)

type Tickets struct {
	api    *Client
	state  collection[models.Ticket]
	toasts ToastSink
}

func NewTickets(api *Client, toasts ToastSink) *Tickets {
	if toasts == nil {
		toasts = discardToasts{}
	}
	return &Tickets{api: api, toasts: toasts}
}

type ticketListResponse struct {
	Tickets    []models.Ticket `json:"tickets"`
	Pagination models.Page     `json:"pagination"`
}

type CreateTicket struct {
	Subject    string `json:"subject"`
	Department string `json:"department"`
	Priority   string `json:"priority"`
	Message    string `json:"message"`
}

// ReplyAttachment carries one file for a multipart ticket reply.
type ReplyAttachment struct {
	Filename string
	MimeType string
	Content  []byte
}

func (tk *Tickets) Fetch(ctx context.Context, params ListParams) error {
	gen := tk.state.begin()
	var resp ticketListResponse
	err := tk.api.Get(ctx, "/api/tickets"+params.encode(), &resp)
	if !tk.state.finish(gen, resp.Tickets, resp.Pagination, err) {
		return nil
	}
	return err
}

func (tk *Tickets) Get(ctx context.Context, id string) (models.Ticket, error) {
	var out models.Ticket
	err := tk.api.Get(ctx, "/api/tickets/"+id, &out)
	return out, err
}

func (tk *Tickets) Create(ctx context.Context, req CreateTicket) (models.Ticket, error) {
	var out models.Ticket
	err := tk.api.Post(ctx, "/api/tickets", req, &out)
	if err != nil {
		tk.toasts.Show(notify.Toast{
			Message: "Could not create ticket",
			Type:    models.NotificationError,
		})
	}
	return out, err
}

// Reply posts a multipart form with the message and any attachments.
func (tk *Tickets) Reply(ctx context.Context, ticketID, message string, files []ReplyAttachment) (models.TicketReply, error) {
	var out models.TicketReply

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("message", message); err != nil {
		return out, err
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="attachments"; filename="`+f.Filename+`"`)
		header.Set("Content-Type", f.MimeType)
		part, err := form.CreatePart(header)
		if err != nil {
			return out, err
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Content)); err != nil {
			return out, err
		}
	}
	if err := form.Close(); err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tk.api.baseURL+"/api/tickets/"+ticketID+"/reply", &buf)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := tk.api.doRaw(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := decodeError(resp)
		tk.toasts.Show(notify.Toast{
			Message: "Could not send reply",
			Type:    models.NotificationError,
		})
		return out, err
	}
	return out, decodeJSONBody(resp.Body, &out)
}

func (tk *Tickets) UpdateStatus(ctx context.Context, id, status string) (models.Ticket, error) {
	var out models.Ticket
	err := tk.api.Patch(ctx, "/api/tickets/"+id+"/status", map[string]string{"status": status}, &out)
	if err != nil {
		tk.toasts.Show(notify.Toast{
			Message: "Could not update ticket status",
			Type:    models.NotificationError,
		})
	}
	return out, err
}

func (tk *Tickets) Snapshot() ([]models.Ticket, models.Page, bool, string) {
	return tk.state.snapshot()
}
