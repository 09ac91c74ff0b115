package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/qrchat-cli/internal/domain"
	applog "github.com/bnema/qrchat-cli/internal/log"
	"github.com/bnema/qrchat-cli/internal/ports"
	"github.com/google/uuid"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 5 * time.Second
	requestIDHeader       = "X-Request-ID"
)

const (
	opListRooms    = "list rooms"
	opListMessages = "list messages"
	opListPresence = "list presence"
	opJoin         = "join room"
	opPostMessage  = "post message"
	opLeave        = "leave room"
	opCloseRoom    = "close room"
)

var errMalformedJoinResponse = errors.New("join response missing userId or roomId")

// Client is the HTTP implementation of ports.Gateway.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	requestTimeout time.Duration
	userAgent      string
}

type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	UserAgent      string
}

var _ ports.Gateway = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("api base url is required")
	}

	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:        parsed,
		httpClient:     httpClient,
		requestTimeout: timeout,
		userAgent:      opts.UserAgent,
	}, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]domain.RoomSummary, error) {
	var payload []roomPayload
	if err := c.do(ctx, opListRooms, http.MethodGet, "rooms", nil, &payload); err != nil {
		return nil, err
	}

	return toRoomSummaries(payload), nil
}

func (c *Client) ListMessages(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error) {
	var payload []messagePayload
	if err := c.do(ctx, opListMessages, http.MethodGet, roomPath(roomID, "messages"), nil, &payload); err != nil {
		return nil, err
	}

	return toMessages(payload), nil
}

func (c *Client) ListPresence(ctx context.Context, roomID domain.RoomID) (domain.Presence, error) {
	var payload map[string]userPayload
	if err := c.do(ctx, opListPresence, http.MethodGet, roomPath(roomID, "users"), nil, &payload); err != nil {
		return nil, err
	}

	return toPresence(payload), nil
}

func (c *Client) Join(ctx context.Context, req ports.JoinRequest) (ports.JoinResult, error) {
	body := joinRequestPayload{
		Name:     req.DisplayName,
		RoomID:   optionalString(string(req.RoomID)),
		RoomName: optionalString(req.RoomName),
	}

	var payload joinResponsePayload
	if err := c.do(ctx, opJoin, http.MethodPost, "join-room", body, &payload); err != nil {
		return ports.JoinResult{}, err
	}
	if payload.UserID == "" || payload.RoomID == "" {
		return ports.JoinResult{}, &domain.TransportError{Op: opJoin, Err: errMalformedJoinResponse}
	}

	roomName := req.RoomName
	if roomName == "" {
		roomName = payload.RoomName
	}

	return ports.JoinResult{
		SelfID:   domain.UserID(payload.UserID),
		RoomID:   domain.RoomID(payload.RoomID),
		RoomName: roomName,
	}, nil
}

func (c *Client) PostMessage(ctx context.Context, roomID domain.RoomID, selfID domain.UserID, text string) error {
	body := postMessagePayload{UserID: string(selfID), Text: text}
	return c.do(ctx, opPostMessage, http.MethodPost, roomPath(roomID, "message"), body, nil)
}

func (c *Client) Leave(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	body := leavePayload{UserID: string(userID)}
	return c.do(ctx, opLeave, http.MethodPost, roomPath(roomID, "leave"), body, nil)
}

func (c *Client) CloseRoom(ctx context.Context, roomID domain.RoomID) error {
	return c.do(ctx, opCloseRoom, http.MethodPost, roomPath(roomID, "close"), nil, nil)
}

// do performs one round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	endpoint, err := c.baseURL.Parse(path)
	if err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("build url: %w", err)}
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return &domain.TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint.String(), body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	l := applog.Ctx(ctx)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	l.Debug().
		Str(applog.FieldOp, op).
		Str(applog.FieldRequestID, requestID).
		Int(applog.FieldStatus, resp.StatusCode).
		Int64(applog.FieldLatency, time.Since(started).Milliseconds()).
		Msg("gateway round trip")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &domain.TransportError{Op: op, Status: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	if err := decodeBody(resp.Body, out); err != nil {
		return &domain.TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}

	return nil
}

// requestContext bounds every call; an earlier caller deadline still wins.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.requestTimeout)
}

func decodeBody(body io.Reader, out any) error {
	data, err := io.ReadAll(io.LimitReader(body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxResponseBytes {
		return errors.New("response body too large")
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func roomPath(roomID domain.RoomID, action string) string {
	return "rooms/" + url.PathEscape(string(roomID)) + "/" + action
}
