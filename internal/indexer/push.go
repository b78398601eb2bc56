package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// NetworkData identifies the indexer that sent a payload
type NetworkData struct {
	Network   types.Network `json:"network"`
	ChainID   *uint64       `json:"chain_id"`
	IndexerID uuid.UUID     `json:"indexer_id"`
}

// PushEvent describes the transaction that changed an entity
type PushEvent struct {
	Name      types.EventName `json:"name"`
	TxHash    string          `json:"tx_hash"`
	TxIndex   uint64          `json:"tx_index"`
	Timestamp uint64          `json:"timestamp"`
}

// PushData carries exactly one entity snapshot
type PushData struct {
	Address  *types.Address  `json:"Address,omitempty"`
	Asset    *types.Asset    `json:"Asset,omitempty"`
	Case     *types.Case     `json:"Case,omitempty"`
	Reporter *types.Reporter `json:"Reporter,omitempty"`
}

// Kind returns the entity kind in the payload
func (d PushData) Kind() types.EntityKind {
	switch {
	case d.Address != nil:
		return types.EntityAddress
	case d.Asset != nil:
		return types.EntityAsset
	case d.Case != nil:
		return types.EntityCase
	case d.Reporter != nil:
		return types.EntityReporter
	}
	return ""
}

// Key returns "<kind>:<id>" for the entity in the payload
func (d PushData) Key() string {
	switch {
	case d.Address != nil:
		return "address:" + d.Address.Address
	case d.Asset != nil:
		return "asset:" + d.Asset.Address + ":" + d.Asset.AssetID
	case d.Case != nil:
		return "case:" + d.Case.ID.String()
	case d.Reporter != nil:
		return "reporter:" + d.Reporter.ID.String()
	}
	return ""
}

// PushPayload is the body of a webhook call
type PushPayload struct {
	NetworkData NetworkData `json:"network_data"`
	Event       PushEvent   `json:"event"`
	Data        PushData    `json:"data"`
}

// Webhook delivers payloads and heartbeats to the collector
type Webhook struct {
	url       string
	indexerID uuid.UUID
	token     string
	client    *http.Client
}

// NewWebhook signs a token with secret for every call to url
func NewWebhook(url string, indexerID uuid.UUID, secret string, timeout time.Duration) (*Webhook, error) {
	token, err := CreateJWT(secret, time.Now())
	if err != nil {
		return nil, err
	}
	return &Webhook{
		url:       url,
		indexerID: indexerID,
		token:     token,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Push posts payload to the webhook
func (w *Webhook) Push(ctx context.Context, payload PushPayload) error {
	return w.send(ctx, http.MethodPost, w.url, payload)
}

// Heartbeat reports the cursor to {url}/indexer/{id}/heartbeat
func (w *Webhook) Heartbeat(ctx context.Context, cursor Cursor) error {
	return w.send(ctx, http.MethodPut, fmt.Sprintf("%s/indexer/%s/heartbeat", w.url, w.indexerID), cursor)
}

func (w *Webhook) send(ctx context.Context, method, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
