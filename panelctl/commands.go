package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"

	"panel/internal/cli/output"
	clientpkg "panel/internal/client"
	"panel/internal/config"
	"panel/internal/faultinject"
	"panel/internal/models"
	"panel/internal/notify"
)

func newLoginCmd(st *appState) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Authenticate and store the session token",
		ArgsUsage: "EMAIL PASSWORD",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return errors.New("usage: panelctl login EMAIL PASSWORD")
			}
			authed, res, err := st.api.Login(ctx, c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			st.api = authed
			st.cfg.Server.Token = res.Token
			if err := config.Save(st.cfg, st.cfgPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			return st.print(jsonMap(res.User))
		},
	}
}

func newStatusCmd(st *appState) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check panel API health",
		Action: func(ctx context.Context, c *cli.Command) error {
			var res map[string]any
			if err := st.api.Get(ctx, "/api/status", &res); err != nil {
				return err
			}
			return st.print(res)
		},
	}
}

func newProfileCmd(st *appState) *cli.Command {
	var req clientpkg.UpdateProfile
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or update the account profile",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "first-name", Destination: &req.FirstName},
			&cli.StringFlag{Name: "last-name", Destination: &req.LastName},
			&cli.StringFlag{Name: "company", Destination: &req.Company},
			&cli.StringFlag{Name: "phone", Destination: &req.Phone},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if req.FirstName != "" || req.LastName != "" || req.Company != "" || req.Phone != "" {
				user, err := st.api.UpdateProfileInfo(ctx, req)
				if err != nil {
					return err
				}
				return st.print(jsonMap(user))
			}
			user, err := st.api.Profile(ctx)
			if err != nil {
				return err
			}
			return st.print(jsonMap(user))
		},
	}
}

func newDomainsCmd(st *appState) *cli.Command {
	params := listFlags{}
	return &cli.Command{
		Name:  "domains",
		Usage: "List and renew domains",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List registered domains",
				Flags: params.flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					dom := clientpkg.NewDomains(st.api, st.toasts)
					if err := dom.Fetch(ctx, params.toParams()); err != nil {
						return err
					}
					items, page, _, _ := dom.Snapshot()
					return st.print(listPayload("domains", items, page))
				},
			},
			{
				Name:      "renew",
				Usage:     "Renew a domain for one year",
				ArgsUsage: "DOMAIN_ID",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return errors.New("usage: panelctl domains renew DOMAIN_ID")
					}
					dom := clientpkg.NewDomains(st.api, st.toasts)
					d, err := dom.Renew(ctx, c.Args().First())
					if err != nil {
						return err
					}
					return st.print(jsonMap(d))
				},
			},
		},
	}
}

func newInvoicesCmd(st *appState) *cli.Command {
	params := listFlags{}
	return &cli.Command{
		Name:  "invoices",
		Usage: "List invoices and fetch PDFs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List invoices",
				Flags: params.flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					inv := clientpkg.NewInvoices(st.api, st.toasts)
					if err := inv.Fetch(ctx, params.toParams()); err != nil {
						return err
					}
					items, page, _, _ := inv.Snapshot()
					return st.print(listPayload("invoices", items, page))
				},
			},
			{
				Name:      "pdf",
				Usage:     "Resolve the PDF download location for an invoice",
				ArgsUsage: "INVOICE_ID",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return errors.New("usage: panelctl invoices pdf INVOICE_ID")
					}
					inv := clientpkg.NewInvoices(st.api, st.toasts)
					loc, err := inv.DownloadPDF(ctx, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(loc)
					return nil
				},
			},
		},
	}
}

func newTicketsCmd(st *appState) *cli.Command {
	params := listFlags{}
	var create clientpkg.CreateTicket
	var attachPaths []string
	return &cli.Command{
		Name:  "tickets",
		Usage: "Manage support tickets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List support tickets",
				Flags: params.flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					tk := clientpkg.NewTickets(st.api, st.toasts)
					if err := tk.Fetch(ctx, params.toParams()); err != nil {
						return err
					}
					items, page, _, _ := tk.Snapshot()
					return st.print(listPayload("tickets", items, page))
				},
			},
			{
				Name:      "show",
				Usage:     "Show one ticket with its replies",
				ArgsUsage: "TICKET_ID",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return errors.New("usage: panelctl tickets show TICKET_ID")
					}
					tk := clientpkg.NewTickets(st.api, st.toasts)
					t, err := tk.Get(ctx, c.Args().First())
					if err != nil {
						return err
					}
					return st.print(jsonMap(t))
				},
			},
			{
				Name:  "create",
				Usage: "Open a new support ticket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true, Destination: &create.Subject},
					&cli.StringFlag{Name: "message", Required: true, Destination: &create.Message},
					&cli.StringFlag{Name: "department", Value: "support", Destination: &create.Department},
					&cli.StringFlag{Name: "priority", Value: "medium", Destination: &create.Priority},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					tk := clientpkg.NewTickets(st.api, st.toasts)
					t, err := tk.Create(ctx, create)
					if err != nil {
						return err
					}
					return st.print(jsonMap(t))
				},
			},
			{
				Name:      "reply",
				Usage:     "Reply to a ticket, optionally attaching files",
				ArgsUsage: "TICKET_ID MESSAGE",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:        "attach",
						Usage:       "file to attach (repeatable, max 5)",
						Destination: &attachPaths,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 2 {
						return errors.New("usage: panelctl tickets reply TICKET_ID MESSAGE [--attach file]")
					}
					files, err := loadAttachments(attachPaths)
					if err != nil {
						return err
					}
					tk := clientpkg.NewTickets(st.api, st.toasts)
					reply, err := tk.Reply(ctx, c.Args().Get(0), c.Args().Get(1), files)
					if err != nil {
						return err
					}
					return st.print(jsonMap(reply))
				},
			},
			{
				Name:      "status",
				Usage:     "Change a ticket's status",
				ArgsUsage: "TICKET_ID STATUS",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 2 {
						return errors.New("usage: panelctl tickets status TICKET_ID STATUS")
					}
					tk := clientpkg.NewTickets(st.api, st.toasts)
					t, err := tk.UpdateStatus(ctx, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					return st.print(jsonMap(t))
				},
			},
		},
	}
}

func newPaymentsCmd(st *appState) *cli.Command {
	var add clientpkg.AddPaymentMethod
	return &cli.Command{
		Name:  "payments",
		Usage: "Manage payment methods",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List payment methods",
				Action: func(ctx context.Context, c *cli.Command) error {
					pm := clientpkg.NewPaymentMethods(st.api, st.toasts)
					if err := pm.Fetch(ctx); err != nil {
						return err
					}
					items, page, _, _ := pm.Snapshot()
					return st.print(listPayload("paymentMethods", items, page))
				},
			},
			{
				Name:  "add",
				Usage: "Add a card",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "number", Required: true, Destination: &add.CardNumber},
					&cli.IntFlag{Name: "exp-month", Required: true, Destination: &add.ExpMonth},
					&cli.IntFlag{Name: "exp-year", Required: true, Destination: &add.ExpYear},
					&cli.StringFlag{Name: "cvc", Required: true, Destination: &add.CVC},
					&cli.StringFlag{Name: "holder", Destination: &add.HolderName},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					pm := clientpkg.NewPaymentMethods(st.api, st.toasts)
					m, err := pm.Add(ctx, add)
					if err != nil {
						return err
					}
					return st.print(jsonMap(m))
				},
			},
			{
				Name:      "remove",
				Usage:     "Delete a payment method",
				ArgsUsage: "METHOD_ID",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return errors.New("usage: panelctl payments remove METHOD_ID")
					}
					pm := clientpkg.NewPaymentMethods(st.api, st.toasts)
					if err := pm.Delete(ctx, c.Args().First()); err != nil {
						return err
					}
					return st.print(map[string]any{"id": c.Args().First(), "status": "deleted"})
				},
			},
			{
				Name:      "default",
				Usage:     "Mark a payment method as default",
				ArgsUsage: "METHOD_ID",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return errors.New("usage: panelctl payments default METHOD_ID")
					}
					pm := clientpkg.NewPaymentMethods(st.api, st.toasts)
					m, err := pm.SetDefault(ctx, c.Args().First())
					if err != nil {
						return err
					}
					return st.print(jsonMap(m))
				},
			},
		},
	}
}

func newNotificationsCmd(st *appState) *cli.Command {
	var (
		onlyUnread bool
		category   string
		page       int
		limit      int
	)
	return &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notif"},
		Usage:   "Read and manage notifications",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List notifications",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "unread", Usage: "unread only", Destination: &onlyUnread},
					&cli.StringFlag{Name: "category", Destination: &category},
					&cli.IntFlag{Name: "page", Value: 1, Destination: &page},
					&cli.IntFlag{Name: "limit", Value: 20, Destination: &limit},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					center, closeFn, err := st.openCenter()
					if err != nil {
						return err
					}
					defer closeFn()
					if err := center.Fetch(ctx, page, limit, category, onlyUnread); err != nil {
						return err
					}
					payload := listPayload("notifications", center.Notifications(), models.Page{})
					delete(payload, "page")
					payload["unreadCount"] = center.UnreadCount()
					return st.print(payload)
				},
			},
			{
				Name:      "read",
				Usage:     "Mark a notification as read",
				ArgsUsage: "NOTIFICATION_ID",
				Action:    func(ctx context.Context, c *cli.Command) error { return st.setRead(ctx, c, true) },
			},
			{
				Name:      "unread",
				Usage:     "Mark a notification as unread",
				ArgsUsage: "NOTIFICATION_ID",
				Action:    func(ctx context.Context, c *cli.Command) error { return st.setRead(ctx, c, false) },
			},
			{
				Name:      "delete",
				Usage:     "Delete a notification",
				ArgsUsage: "NOTIFICATION_ID",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return errors.New("usage: panelctl notifications delete NOTIFICATION_ID")
					}
					center, closeFn, err := st.openCenter()
					if err != nil {
						return err
					}
					defer closeFn()
					if err := center.Delete(ctx, c.Args().First()); err != nil {
						return err
					}
					return st.print(map[string]any{"id": c.Args().First(), "status": "deleted"})
				},
			},
			{
				Name:  "read-all",
				Usage: "Mark every notification as read",
				Action: func(ctx context.Context, c *cli.Command) error {
					center, closeFn, err := st.openCenter()
					if err != nil {
						return err
					}
					defer closeFn()
					if err := center.Fetch(ctx, 1, 100, "", false); err != nil {
						return err
					}
					center.MarkAllRead(ctx)
					return st.print(map[string]any{"status": "ok", "unreadCount": center.UnreadCount()})
				},
			},
			{
				Name:  "watch",
				Usage: "Stream simulated notifications until interrupted",
				Action: func(ctx context.Context, c *cli.Command) error {
					center, closeFn, err := st.openCenter()
					if err != nil {
						return err
					}
					defer closeFn()

					feed := notify.NewFeed(center, faultinject.DefaultSource(), notify.DefaultFeedConfig(),
						func(url string) { fmt.Println("open:", url) }, st.log)
					feed.Connect()
					defer feed.Close()

					fmt.Println("watching for notifications, ctrl-c to stop")
					sigCh := make(chan os.Signal, 1)
					signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
					select {
					case <-sigCh:
					case <-ctx.Done():
					}
					return nil
				},
			},
		},
	}
}

func (st *appState) setRead(ctx context.Context, c *cli.Command, read bool) error {
	if c.Args().Len() != 1 {
		return errors.New("usage: panelctl notifications read|unread NOTIFICATION_ID")
	}
	center, closeFn, err := st.openCenter()
	if err != nil {
		return err
	}
	defer closeFn()
	if err := center.Fetch(ctx, 1, 100, "", false); err != nil {
		return err
	}
	if read {
		center.MarkRead(ctx, c.Args().First())
	} else {
		center.MarkUnread(ctx, c.Args().First())
	}
	return st.print(map[string]any{"id": c.Args().First(), "unreadCount": center.UnreadCount()})
}

// openCenter builds a notification center backed by the local sqlite
// store and the remote notification API.
func (st *appState) openCenter() (*notify.Center, func(), error) {
	storePath, err := st.cfg.StorePath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
		return nil, nil, err
	}
	database, err := notify.OpenStore(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open notification store: %w", err)
	}
	center, err := notify.NewCenter(database, clientpkg.NewNotifications(st.api), st.toasts, st.log)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return center, func() { database.Close() }, nil
}

func (st *appState) print(payload map[string]any) error {
	return output.Print(payload, st.format, st.quiet)
}

// listFlags is the shared flag set of the collection subcommands,
// mirroring the query surface of the list endpoints.
type listFlags struct {
	search string
	status string
	sortBy string
	order  string
	page   int
	limit  int
}

func (lf *listFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "search", Usage: "substring filter", Destination: &lf.search},
		&cli.StringFlag{Name: "status", Usage: "status filter", Destination: &lf.status},
		&cli.StringFlag{Name: "sort", Usage: "sort field", Destination: &lf.sortBy},
		&cli.StringFlag{Name: "order", Usage: "asc or desc", Destination: &lf.order},
		&cli.IntFlag{Name: "page", Value: 1, Destination: &lf.page},
		&cli.IntFlag{Name: "limit", Value: 10, Destination: &lf.limit},
	}
}

func (lf *listFlags) toParams() clientpkg.ListParams {
	return clientpkg.ListParams{
		Search:    lf.search,
		Status:    lf.status,
		SortBy:    lf.sortBy,
		SortOrder: lf.order,
		Page:      lf.page,
		Limit:     lf.limit,
	}
}

// jsonMap round-trips a typed value through its JSON form so output
// tables see the same field names the API serves.
func jsonMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"error": err.Error()}
	}
	return m
}

func listPayload[T any](key string, items []T, page models.Page) map[string]any {
	b, _ := json.Marshal(items)
	var rows []any
	_ = json.Unmarshal(b, &rows)
	if rows == nil {
		rows = []any{}
	}
	return map[string]any{
		key:    rows,
		"page": jsonMap(page),
	}
}

// loadAttachments reads local files into reply attachments, guessing
// the content type from the extension first and the bytes second.
func loadAttachments(paths []string) ([]clientpkg.ReplyAttachment, error) {
	var files []clientpkg.ReplyAttachment
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		mt := mime.TypeByExtension(filepath.Ext(p))
		if mt == "" {
			mt = http.DetectContentType(b)
		}
		files = append(files, clientpkg.ReplyAttachment{
			Filename: filepath.Base(p),
			MimeType: mt,
			Content:  b,
		})
	}
	return files, nil
}
