// Package remote reaches the file tier over its HTTP boundary, for
// deployments where the data directory lives on another portal instance.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmconta/portal/internal/domain"
	"github.com/dmconta/portal/internal/store"
	"github.com/dmconta/portal/internal/utils"
)

const togglesPath = "/api/toggles"

// SaveResponse is the wire shape of a successful write.
type SaveResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	SavedAt time.Time       `json:"savedAt"`
	Saved   store.SaveFlags `json:"saved"`
}

// Client implements store.Remote over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a remote client for the portal instance at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves all three collections.
func (c *Client) Fetch(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+togglesPath, http.NoBody)
	if err != nil {
		return snap, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return snap, fmt.Errorf("failed to fetch collections: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("failed to decode collections: %w", err)
	}

	if snap.Services == nil {
		snap.Services = []domain.Service{}
	}
	if snap.Messages == nil {
		snap.Messages = []domain.Message{}
	}
	if snap.AuditLogs == nil {
		snap.AuditLogs = []domain.AuditLog{}
	}
	return snap, nil
}

// Save posts a partial document; absent fields leave the corresponding
// server-side files untouched.
func (c *Client) Save(ctx context.Context, doc store.Payload) (store.SaveFlags, error) {
	var flags store.SaveFlags

	body, err := json.Marshal(doc)
	if err != nil {
		return flags, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+togglesPath, bytes.NewReader(body))
	if err != nil {
		return flags, fmt.Errorf("failed to create save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return flags, fmt.Errorf("failed to save collections: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return flags, fmt.Errorf("save returned status %d", resp.StatusCode)
	}

	var saved SaveResponse
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return flags, fmt.Errorf("failed to decode save response: %w", err)
	}
	return saved.Saved, nil
}
