// Package gateway is the single request/response channel every component
// talks to the record store through: one endpoint, an action name and a
// payload in, a status envelope out.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

// Request is the body POSTed to the endpoint.
type Request struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Response is the envelope every action answers with. Data is left raw so
// callers decode it into the shape their action returns.
type Response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	URL     string          `json:"url,omitempty"`
}

func (r *Response) OK() bool { return r != nil && r.Status == model.StatusSuccess }

// Success builds a success envelope around data (nil for a bare ack).
func Success(data any) (*Response, error) {
	resp := &Response{Status: model.StatusSuccess}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode data: %w", err)
		}
		resp.Data = raw
	}
	return resp, nil
}

func Failure(msg string) *Response {
	return &Response{Status: model.StatusError, Message: msg}
}

// TransportError means the request never produced an envelope: the network
// failed, the server answered outside the protocol or the body did not decode.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError is an envelope with status "error".
type ApplicationError struct {
	Action  string
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway %s: unknown error", e.Action)
	}
	return e.Message
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsApplication(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}
