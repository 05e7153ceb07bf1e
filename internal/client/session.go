package client

import (
	"context"

	"panel/internal/models"
)

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a session token. The returned client
// copy carries the token on every subsequent request.
func (c *Client) Login(ctx context.Context, email, password string) (*Client, LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.Post(ctx, "/api/auth/login", body, &out); err != nil {
		return c, out, err
	}
	return c.WithToken(out.Token), out, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.Get(ctx, "/api/user/profile", &out)
	return out, err
}

type UpdateProfile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

// UpdateProfileInfo saves profile changes and returns the updated record.
func (c *Client) UpdateProfileInfo(ctx context.Context, req UpdateProfile) (models.User, error) {
	var out models.User
	err := c.Put(ctx, "/api/user/profile", req, &out)
	return out, err
}
