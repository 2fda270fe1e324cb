// Package backend pushes approved contacts to the hosted API. The engine is
// the source of truth; the backend only ever receives upserts, so a failed
// push is retried on the next cycle with no reconciliation step.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"contactpilot-engine/internal/domain"
	"contactpilot-engine/internal/secrets"
)

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	// token is resolved lazily so the engine can start before the operator
	// has pasted one in.
	token func() (string, error)
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		token:   secrets.GetBackendToken,
	}
}

// contactPayload is the wire shape the backend accepts. Field names are the
// backend's, not ours.
type contactPayload struct {
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Company        string     `json:"company,omitempty"`
	JobTitle       string     `json:"job_title,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	LinkedInURL    string     `json:"linkedin_url,omitempty"`
	FirstContactAt time.Time  `json:"first_contact_at"`
	LastContactAt  time.Time  `json:"last_contact_at"`
	TimesContacted int        `json:"times_contacted"`
	FollowUpAt     *time.Time `json:"follow_up_at,omitempty"`
}

// Upsert sends one contact. The backend keys on email and treats every call
// as create-or-replace.
func (c *Client) Upsert(ctx context.Context, contact domain.Contact) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(contactPayload{
		Email:          contact.Email,
		FirstName:      contact.FirstName,
		LastName:       contact.LastName,
		Company:        contact.Company,
		JobTitle:       contact.JobTitle,
		Phone:          contact.Phone,
		LinkedInURL:    contact.LinkedInURL,
		FirstContactAt: contact.FirstContactAt,
		LastContactAt:  contact.LastContactAt,
		TimesContacted: contact.TimesContacted,
		FollowUpAt:     contact.FollowUpAt,
	})
	if err != nil {
		return fmt.Errorf("marshal contact %s: %w", contact.Email, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/v1/contacts/"+contact.Email, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push %s: %w", contact.Email, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push %s: backend returned %d: %s",
			contact.Email, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// Ping checks reachability and token validity without writing anything.
func (c *Client) Ping(ctx context.Context) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/ping", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend ping returned %d", resp.StatusCode)
	}
	return nil
}
