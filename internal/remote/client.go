package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// CallOptions carries per-call settings. A CallID is generated when empty.
type CallOptions struct {
	CallID string
}

// Caller executes a named action against a named remote entity. The gateway
// consumes only this contract; transport, retries and serialization live
// behind it.
type Caller interface {
	ExecuteCall(ctx context.Context, entity, action string, params Params, opts CallOptions) (*Call, error)
}

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewCallID returns a fresh correlation id for one remote round-trip.
func NewCallID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// Client is an HTTP/JSON connector to the remote event-management system.
// One Client is bound to one configured connector (base URL + credentials).
// It performs no retries and no caching.
type Client struct {
	baseURL string
	apiKey  string
	siteKey string
	http    *http.Client
}

func NewClient(baseURL, apiKey, siteKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		siteKey: siteKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ExecuteCall(ctx context.Context, entity, action string, params Params, opts CallOptions) (*Call, error) {
	callID := opts.CallID
	if callID == "" {
		callID = NewCallID()
	}
	if params == nil {
		params = Params{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode call params: %w", err)
	}

	url := c.baseURL + "/" + entity + "/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Site-Key", c.siteKey)
	req.Header.Set("X-Call-Id", callID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote call %s.%s: %w", entity, action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read remote reply %s.%s: %w", entity, action, err)
	}
	reply := Reply{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &reply); err != nil {
			return nil, fmt.Errorf("decode remote reply %s.%s: %w", entity, action, err)
		}
	}

	status := StatusDone
	if resp.StatusCode >= 400 || replyIsError(reply) {
		status = StatusError
	}
	log.Debug().
		Str("call_id", callID).
		Str("entity", entity).
		Str("action", action).
		Str("status", string(status)).
		Dur("duration", time.Since(start)).
		Msg("remote call")
	return NewCall(reply, status), nil
}

func replyIsError(reply Reply) bool {
	switch v := reply["is_error"].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
