package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"leaddesk/internal/leads"
)

// ListLeads fetches one page.
func (c *Client) ListLeads(ctx context.Context, q leads.Query) (*leads.Page, error) {
	values, err := q.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/leads", query: values})
	if err != nil {
		return nil, err
	}
	var p leads.Page
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if p.Data == nil {
		p.Data = []leads.Lead{}
	}
	return &p, nil
}

// GetLead fetches one lead.
func (c *Client) GetLead(ctx context.Context, id leads.ID) (*leads.Lead, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: leadPath(id)})
	if err != nil {
		return nil, err
	}
	l, err := decodeLead(data)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("lead %s: empty response", id)
	}
	return l, nil
}

// CreateLead posts a new lead. The returned lead is nil when the server
// sends back no body.
func (c *Client) CreateLead(ctx context.Context, in leads.Input) (*leads.Lead, error) {
	data, err := c.do(ctx, request{method: http.MethodPost, path: "/api/leads", body: in})
	if err != nil {
		return nil, err
	}
	return decodeLead(data)
}

// UpdateLead replaces a lead.
func (c *Client) UpdateLead(ctx context.Context, id leads.ID, in leads.Input) (*leads.Lead, error) {
	data, err := c.do(ctx, request{method: http.MethodPut, path: leadPath(id), body: in})
	if err != nil {
		return nil, err
	}
	return decodeLead(data)
}

// DeleteLead removes a lead.
func (c *Client) DeleteLead(ctx context.Context, id leads.ID) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: leadPath(id)})
	return err
}

func leadPath(id leads.ID) string {
	return "/api/leads/" + url.PathEscape(string(id))
}

// decodeLead accepts {"lead": {...}} or a bare record.
func decodeLead(data []byte) (*leads.Lead, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var env struct {
		Lead *leads.Lead `json:"lead"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse lead: %w", err)
	}
	if env.Lead != nil {
		return env.Lead, nil
	}
	var l leads.Lead
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse lead: %w", err)
	}
	return &l, nil
}
