package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	msgUsernameTaken  = "Username already taken"
	msgEmailTaken     = "Email already registered"
	msgGenericFailure = "Something went wrong. Please try again."
)

// APIError is a non-2xx answer from the auth API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api %d %s: %s", e.Status, e.Code, e.Message)
}

// UserMessage is the text shown to a person for err.
func UserMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return msgGenericFailure
	}
	if apiErr.Code == "duplicate_identity" {
		switch apiErr.Field {
		case "username":
			return msgUsernameTaken
		case "email":
			return msgEmailTaken
		}
	}
	if apiErr.Message != "" && apiErr.Status < http.StatusInternalServerError {
		return apiErr.Message
	}
	return msgGenericFailure
}

type Client struct {
	baseURL string
	http    *http.Client
	store   *Store
}

func NewClient(baseURL string, store *Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		store:   store,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) Store() *Store { return c.store }

type authPayload struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.signIn(ctx, OpRegister, "/api/auth/register", body)
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.signIn(ctx, OpLogin, "/api/auth/login", body)
}

func (c *Client) GoogleSignIn(ctx context.Context, credential string) error {
	return c.signIn(ctx, OpGoogleSignIn, "/api/auth/google", map[string]string{"credential": credential})
}

func (c *Client) GetMe(ctx context.Context) error {
	_ = c.store.Dispatch(Pending(OpGetMe))
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return c.reject(OpGetMe, err)
	}
	return c.store.Dispatch(MeLoaded(&out.User))
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.simple(ctx, OpForgotPassword, "/api/auth/forgot-password", map[string]string{"email": email})
}

func (c *Client) ValidateOTP(ctx context.Context, email, otp string) error {
	return c.simple(ctx, OpValidateOTP, "/api/auth/validate-otp", map[string]string{"email": email, "otp": otp})
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword, confirmPassword string) error {
	body := map[string]string{
		"email":           email,
		"otp":             otp,
		"newPassword":     newPassword,
		"confirmPassword": confirmPassword,
	}
	return c.simple(ctx, OpResetPassword, "/api/auth/reset-password", body)
}

func (c *Client) Logout() error { return c.store.Dispatch(Logout()) }

func (c *Client) ClearResetFlags() error { return c.store.Dispatch(ClearResetFlags()) }

func (c *Client) signIn(ctx context.Context, op Op, path string, body any) error {
	_ = c.store.Dispatch(Pending(op))
	var out authPayload
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return c.reject(op, err)
	}
	return c.store.Dispatch(SignedIn(op, &out.User, out.Token))
}

func (c *Client) simple(ctx context.Context, op Op, path string, body any) error {
	_ = c.store.Dispatch(Pending(op))
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return c.reject(op, err)
	}
	return c.store.Dispatch(Fulfilled(op))
}

func (c *Client) reject(op Op, err error) error {
	_ = c.store.Dispatch(Rejected(op, UserMessage(err)))
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.store.State().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, apiErr) != nil || apiErr.Code == "" {
			apiErr.Code = "http_error"
			apiErr.Message = strings.TrimSpace(string(data))
			if apiErr.Message == "" {
				apiErr.Message = resp.Status
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
