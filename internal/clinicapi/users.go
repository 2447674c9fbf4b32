package clinicapi

import (
	"context"
	"net/http"
	"net/url"

	"clinicdesk/internal/models"
)

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var out models.LoginResponse
	if err := c.doSend(ctx, "login", http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		msg := out.Message
		if msg == "" {
			msg = "login returned no token"
		}
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: msg}
	}
	return &out, nil
}

// FetchUser returns the full record of a user.
func (c *Client) FetchUser(ctx context.Context, id string) (*models.UserDetails, error) {
	q := url.Values{}
	q.Set("id", id)
	var out models.UserDetails
	if err := c.doGet(ctx, "user_get", "/api/auth/user", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsersByRole lists users holding a role.
func (c *Client) UsersByRole(ctx context.Context, role string) ([]models.UserSummary, error) {
	q := url.Values{}
	q.Set("role", role)
	var out []models.UserSummary
	if err := c.doGet(ctx, "users_by_role", "/api/auth/usersByRole", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, u models.UserSummary) (*models.UserSummary, error) {
	var out models.UserSummary
	if err := c.doSend(ctx, "user_update", http.MethodPut, "/users/"+url.PathEscape(id), nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", id)
	return c.doSend(ctx, "user_delete", http.MethodDelete, "/api/auth/user", q, nil, nil)
}

// RegisterUser creates a staff account.
func (c *Client) RegisterUser(ctx context.Context, u models.NewUser) error {
	return c.doSend(ctx, "user_register", http.MethodPost, "/api/auth/register", nil, u, nil)
}

// UpdatePassword changes a password. Admins may reset without the old one.
func (c *Client) UpdatePassword(ctx context.Context, change models.PasswordChange) error {
	return c.doSend(ctx, "update_password", http.MethodPut, "/api/auth/updatePassword", nil, change, nil)
}
