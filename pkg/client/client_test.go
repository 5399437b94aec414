package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(Config{BaseURL: ts.URL + "/"})
}

func TestClient_LoginSendsCredentialsAndKeepsToken(t *testing.T) {
	var got LoginRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Login successful","token":"tok-123","user":{"id":"u1","email":"a@b.c","role":"PATIENT"}}`))
	})

	resp, err := c.Login(context.Background(), "a@b.c", "secret1")
	require.NoError(t, err)

	assert.Equal(t, LoginRequest{Email: "a@b.c", Password: "secret1"}, got)
	assert.Equal(t, "tok-123", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, RolePatient, resp.User.Role)
	assert.Equal(t, "tok-123", c.GetToken())
}

func TestClient_AuthorizationHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-9" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"u9","name":"Nine","email":"n@x.io","role":"CAREGIVER"}}`))
	})

	_, err := c.GetCurrentUser(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())

	c.SetToken("tok-9")
	u, err := c.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Nine", u.Name)
	assert.Equal(t, RoleCaregiver, u.Role)
}

func TestClient_RegisterDoesNotTouchToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, RoleCaregiver, req.Role)
		assert.Equal(t, "+1234567890", req.Phone)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"User registered successfully","data":{"id":"u2","token":"ignored"}}`))
	})

	resp, err := c.Register(context.Background(), RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret1",
		Phone:    "+1234567890",
		Role:     RoleCaregiver,
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.JSONEq(t, `{"id":"u2","token":"ignored"}`, string(resp.Data))
	assert.Empty(t, c.GetToken())
}

func TestClient_RegisterAcceptsAnySuccessBody(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantData    string
	}{
		{name: "json string", status: http.StatusCreated, body: `"User registered successfully"`},
		{name: "plain text", status: http.StatusCreated, body: `User registered successfully`},
		{name: "json array", status: http.StatusCreated, body: `[1,2]`},
		{name: "empty", status: http.StatusNoContent, body: ``},
		{name: "object without envelope", status: http.StatusOK, body: `{"id":"u3"}`},
		{name: "non-string message", status: http.StatusCreated, body: `{"message":42,"data":[1]}`, wantData: `[1]`},
		{name: "envelope", status: http.StatusCreated, body: `{"success":true,"message":"Created","data":{"id":"u4"}}`, wantMessage: "Created", wantData: `{"id":"u4"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := c.Register(context.Background(), RegisterRequest{
				Name:     "Jane",
				Email:    "jane@example.com",
				Password: "secret1",
				Phone:    "+1234567890",
				Role:     RolePatient,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.body, resp.Raw)
			assert.Equal(t, tt.wantMessage, resp.Message)
			if tt.wantData == "" {
				assert.Empty(t, resp.Data)
			} else {
				assert.JSONEq(t, tt.wantData, string(resp.Data))
			}
			assert.Empty(t, c.GetToken())
		})
	}
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "top level message",
			status:      http.StatusUnauthorized,
			body:        `{"success":false,"message":"Invalid credentials"}`,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "message with code",
			status:      http.StatusConflict,
			body:        `{"success":false,"message":"Email already registered","code":"CONFLICT"}`,
			wantMessage: "Email already registered",
			wantCode:    "CONFLICT",
		},
		{
			name:        "nested error object",
			status:      http.StatusBadRequest,
			body:        `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Validation failed"}}`,
			wantMessage: "Validation failed",
			wantCode:    "VALIDATION_ERROR",
		},
		{
			name:        "error string",
			status:      http.StatusTooManyRequests,
			body:        `{"error":"Rate limit exceeded. Please try again later."}`,
			wantMessage: "Rate limit exceeded. Please try again later.",
		},
		{
			name:   "empty body",
			status: http.StatusInternalServerError,
			body:   "",
		},
		{
			name:   "html body",
			status: http.StatusBadGateway,
			body:   "<html>bad gateway</html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Login(context.Background(), "a@b.c", "wrong")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Empty(t, c.GetToken())
		})
	}
}

func TestClient_TransportErrorIsNotAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewClient(Config{BaseURL: url})
	_, err := c.Login(context.Background(), "a@b.c", "secret1")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_InfoAndHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(`{"status":"UP","service":"Medicine Reminder System","message":"Backend is running"}`))
		case "/readyz":
			_, _ = w.Write([]byte(`{"success":true,"data":{"status":"ready","database":"connected"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UP", info.Status)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connected", health.Database)
	assert.NoError(t, c.Ping(context.Background()))
}
