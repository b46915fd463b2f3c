package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance_ms/dtos/request"
	"attendance_ms/dtos/response"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token for each request. Session implements it.
type TokenSource interface {
	Token() string
}

// API talks to the attendance service over its JSON interface. Requests are
// not retried.
type API struct {
	baseURL string
	tokens  TokenSource
	timeout time.Duration
}

func NewAPI(baseURL string, tokens TokenSource) *API {
	return &API{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		timeout: defaultTimeout,
	}
}

// WithTimeout bounds every request; a context deadline can only shorten it.
func (a *API) WithTimeout(d time.Duration) *API {
	a.timeout = d
	return a
}

func (a *API) RegisterChallenge(ctx context.Context) (json.RawMessage, error) {
	var options json.RawMessage
	err := a.do(ctx, fiber.MethodPost, "/webauthn/register-challenge", nil, &options)
	return options, err
}

func (a *API) RegisterVerify(ctx context.Context, attestation []byte) error {
	return a.verify(ctx, "/webauthn/register-verify", attestation)
}

func (a *API) AuthenticateChallenge(ctx context.Context) (json.RawMessage, error) {
	var options json.RawMessage
	err := a.do(ctx, fiber.MethodPost, "/webauthn/authenticate-challenge", nil, &options)
	return options, err
}

func (a *API) AuthenticateVerify(ctx context.Context, assertion []byte) error {
	return a.verify(ctx, "/webauthn/authenticate-verify", assertion)
}

func (a *API) verify(ctx context.Context, path string, payload []byte) error {
	var out response.VerifiedResponse
	if err := a.do(ctx, fiber.MethodPost, path, json.RawMessage(payload), &out); err != nil {
		return err
	}
	if !out.Verified {
		return ErrAuthenticationFailed
	}
	return nil
}

func (a *API) Me(ctx context.Context) (*response.Me, error) {
	var me response.Me
	if err := a.do(ctx, fiber.MethodGet, "/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

func (a *API) OpenSession(ctx context.Context) (*response.AttendanceRecord, error) {
	var rec response.AttendanceRecord
	if err := a.do(ctx, fiber.MethodGet, "/attendance/open", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *API) CheckIn(ctx context.Context, req request.CheckInRequest) (*response.AttendanceRecord, error) {
	var rec response.AttendanceRecord
	if err := a.do(ctx, fiber.MethodPost, "/attendance/check-in", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *API) CheckOut(ctx context.Context, req request.CheckOutRequest) (*response.AttendanceRecord, error) {
	var rec response.AttendanceRecord
	if err := a.do(ctx, fiber.MethodPost, "/attendance/check-out", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *API) Today(ctx context.Context) ([]response.AttendanceRecord, error) {
	var recs []response.AttendanceRecord
	if err := a.do(ctx, fiber.MethodGet, "/attendance/today", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := a.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(a.baseURL + path)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	agent.Timeout(timeout)
	if a.tokens != nil {
		if token := a.tokens.Token(); token != "" {
			agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	if body != nil {
		agent.JSON(body)
	}

	status, data, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrNetwork, errors.Join(errs...))
	}

	if status >= fiber.StatusBadRequest {
		var errResp response.ErrorResponse
		if err := json.Unmarshal(data, &errResp); err != nil || errResp.Error == "" {
			return &APIError{Status: status, Message: strings.TrimSpace(string(data))}
		}
		return &APIError{Status: status, Code: errResp.Code, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
