package raindrop

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"raindropmcp/internal/domain"
)

// envelope is the common Raindrop response wrapper.
type envelope struct {
	Result       *bool           `json:"result"`
	Item         json.RawMessage `json:"item"`
	Items        json.RawMessage `json:"items"`
	User         json.RawMessage `json:"user"`
	Count        int             `json:"count"`
	Modified     int             `json:"modified"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"errorMessage"`
}

func (e envelope) ok() bool {
	return e.Result == nil || *e.Result
}

func (e envelope) message() string {
	if e.ErrorMessage != "" {
		return e.ErrorMessage
	}
	return e.Error
}

func decodeInto(raw json.RawMessage, out any) error {
	if out == nil || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// statusError maps a non-2xx response onto the domain error taxonomy.
func statusError(op string, status int, body []byte) *domain.Error {
	msg := strings.TrimSpace(string(body))
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.message() != "" {
		msg = env.message()
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	msg = fmt.Sprintf("raindrop api returned %d: %s", status, msg)

	code := domain.CodeInternal
	retryable := false
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		code = domain.CodeInvalidArgument
	case status == http.StatusUnauthorized:
		code = domain.CodeUnauthenticated
	case status == http.StatusForbidden:
		code = domain.CodePermissionDenied
	case status == http.StatusNotFound:
		code = domain.CodeNotFound
	case status == http.StatusTooManyRequests, status >= 500:
		code = domain.CodeUnavailable
		retryable = true
	}

	err := domain.E(code, op, msg, nil).WithMeta(metaStatus, strconv.Itoa(status))
	err.Retryable = retryable
	return err
}
