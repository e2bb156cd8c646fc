// Package clustertransport provides admin/control-plane helpers over plain
// HTTP/JSON: broadcast commands (reset, shard-map pushes) and health-status
// polling. No command in this module imports it; graphdb_admin's reset
// goes through internal/client over binary RPC instead. The
// graph data plane itself travels over internal/transport and internal/rpc
// instead; this package is control traffic only.
package clustertransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// NodeInfo describes one shard-server process known to graphdb_admin.
type NodeInfo struct {
	ID     string `json:"id"`
	Addr   string `json:"addr"`
	Status string `json:"status,omitempty"`
}

// RegisterRequest is sent by a shard server to graphdb_admin on startup.
type RegisterRequest struct {
	Node NodeInfo `json:"node"`
}

// BroadcastCommand is an admin control message sent to every known shard
// server: a reset, or a shard-map push.
type BroadcastCommand struct {
	Path    string          `json:"path"`
	Payload json.RawMessage `json:"payload"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// PostJSON sends a JSON-encoded POST request and decodes the JSON response
// into out (ignored if nil).
func PostJSON(ctx context.Context, url string, body, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "clustertransport: marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrap(err, "clustertransport: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "clustertransport: do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Errorf("clustertransport: http %s: status %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetJSON sends a GET request and decodes the JSON response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "clustertransport: build request")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "clustertransport: do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Errorf("clustertransport: http %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// BroadcastReset sends a reset command to every node address given,
// continuing past individual failures and returning the set of addresses
// that failed.
func BroadcastReset(ctx context.Context, nodeAddrs []string) []string {
	var failed []string
	cmd := BroadcastCommand{Path: "/admin/reset"}
	for _, addr := range nodeAddrs {
		if err := PostJSON(ctx, "http://"+addr+"/admin/reset", cmd, nil); err != nil {
			failed = append(failed, addr)
		}
	}
	return failed
}
