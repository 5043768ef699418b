package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
)

// RemoteError is an error returned by the server's handler.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc error (%d): %s", e.Code, e.Message)
}

// Unwrap maps the status code back to the matching sentinel so callers can
// use errors.Is across the wire.
func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case http.StatusNotFound:
		return apperrors.ErrReportNotFound
	case http.StatusRequestEntityTooLarge:
		return apperrors.ErrSerializationOverflow
	case http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	case http.StatusServiceUnavailable:
		return apperrors.ErrTimeout
	default:
		return apperrors.ErrInternal
	}
}

type wireResponse struct {
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  int             `json:"code,omitempty"`
}

// Client holds one connection to a Server. Calls are serialised; a
// transport failure leaves the client unusable.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	encoder *json.Encoder
	decoder *json.Decoder
	nextID  int64
	broken  error
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return &Client{
		conn:    conn,
		encoder: json.NewEncoder(conn),
		decoder: json.NewDecoder(conn),
	}, nil
}

// Call invokes method with params and decodes the reply into result, which
// may be nil. The context deadline bounds the round trip and its request ID
// is forwarded to the server's logs.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken != nil {
		return fmt.Errorf("rpc connection unusable: %w", c.broken)
	}

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	c.nextID++
	id := strconv.FormatInt(c.nextID, 10)
	req := Request{
		Method:    method,
		ID:        id,
		RequestID: logger.RequestID(ctx),
		Params:    raw,
	}
	if err := c.encoder.Encode(req); err != nil {
		return c.fail(ctx, fmt.Errorf("sending request: %w", err))
	}
	var resp wireResponse
	if err := c.decoder.Decode(&resp); err != nil {
		return c.fail(ctx, fmt.Errorf("reading response: %w", err))
	}
	if resp.ID != id {
		return c.fail(ctx, fmt.Errorf("response id %q does not match request %q", resp.ID, id))
	}
	if resp.Error != "" {
		return &RemoteError{Code: resp.Code, Message: resp.Error}
	}
	if result != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, result); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) fail(ctx context.Context, err error) error {
	c.broken = err
	c.conn.Close()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTimeout, ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	}
	return err
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
