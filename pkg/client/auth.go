package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Role is the account type chosen at registration
type Role string

const (
	RolePatient   Role = "PATIENT"
	RoleCaregiver Role = "CAREGIVER"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
}

// AuthResponse is the body of a successful login. Only Token is
// guaranteed; the rest depends on the server.
type AuthResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// RegisterResponse is the body of a successful registration. The server
// is free to put anything in it: Message and Data are only filled when the
// body is a JSON object, and Raw always holds the body as received.
type RegisterResponse struct {
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Raw     string          `json:"raw,omitempty"`
}

// User represents an account
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Login authenticates with email and password. On success the returned
// token is also used for later requests made through this client.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := LoginRequest{
		Email:    email,
		Password: password,
	}

	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}

	if resp.Token != "" {
		c.SetToken(resp.Token)
	}

	return &resp, nil
}

// Register creates a new account. Registration does not log the user in.
// Any 2xx counts as success whatever its body looks like.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var body []byte
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", req, &body); err != nil {
		return nil, err
	}

	resp := RegisterResponse{Raw: string(body)}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Message interface{}     `json:"message"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			if msg, ok := obj.Message.(string); ok {
				resp.Message = msg
			}
			resp.Data = obj.Data
		}
	}
	return &resp, nil
}

// GetCurrentUser retrieves the currently authenticated user
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var resp envelope[User]
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Logout revokes the current token on the server and forgets it locally
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}
