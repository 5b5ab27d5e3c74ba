package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/nexusgame/hydra/apitypes"
)

// Client is the high-level hydrad control API client.
type Client struct{ transport *Transport }

// New constructs a client for the control API at addr (host:port).
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport, mostly for tests.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the identity and version of the daemon.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	return call[apitypes.PingResponse](ctx, c, "ping", nil, nil)
}

// Status returns the lifecycle and calibration state.
func (c *Client) Status() (*apitypes.StatusResponse, error) {
	return c.StatusCtx(context.Background())
}

func (c *Client) StatusCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	return call[apitypes.StatusResponse](ctx, c, "status", nil, nil)
}

// Enable enables hydra input on the daemon.
func (c *Client) Enable() (*apitypes.StatusResponse, error) {
	return c.EnableCtx(context.Background())
}

func (c *Client) EnableCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	return call[apitypes.StatusResponse](ctx, c, "enable", nil, nil)
}

// Disable disables hydra input and resets the calibration offset.
func (c *Client) Disable() (*apitypes.StatusResponse, error) {
	return c.DisableCtx(context.Background())
}

func (c *Client) DisableCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	return call[apitypes.StatusResponse](ctx, c, "disable", nil, nil)
}

// Recalibrate clears calibration; the next trigger press captures a new offset.
func (c *Client) Recalibrate() (*apitypes.StatusResponse, error) {
	return c.RecalibrateCtx(context.Background())
}

func (c *Client) RecalibrateCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	return call[apitypes.StatusResponse](ctx, c, "recalibrate", nil, nil)
}

// AllowCalibration sets whether a trigger press may capture calibration.
func (c *Client) AllowCalibration(allow bool) (*apitypes.StatusResponse, error) {
	return c.AllowCalibrationCtx(context.Background(), allow)
}

func (c *Client) AllowCalibrationCtx(ctx context.Context, allow bool) (*apitypes.StatusResponse, error) {
	return call[apitypes.StatusResponse](ctx, c, "calibration/allow", strconv.FormatBool(allow), nil)
}

// SetMode switches the daemon input mode ("hydra", "gamepad", "keyboard").
func (c *Client) SetMode(mode string) (*apitypes.StatusResponse, error) {
	return c.SetModeCtx(context.Background(), mode)
}

func (c *Client) SetModeCtx(ctx context.Context, mode string) (*apitypes.StatusResponse, error) {
	return call[apitypes.StatusResponse](ctx, c, "mode/{mode}", nil, map[string]string{"mode": mode})
}

func call[T any](ctx context.Context, c *Client, path string, payload any, params map[string]string) (*T, error) {
	raw, err := c.transport.DoCtx(ctx, path, payload, params)
	if err != nil {
		return nil, err
	}
	return parse[T](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
