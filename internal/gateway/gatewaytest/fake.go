// Package gatewaytest provides an in-process gateway.Invoker for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
)

type HandlerFunc func(payload json.RawMessage) (*gateway.Response, error)

type Call struct {
	Action  string
	Payload json.RawMessage
}

// Decode unmarshals the recorded payload into v.
func (c Call) Decode(v any) error { return json.Unmarshal(c.Payload, v) }

// Fake records every invocation and answers from per-action handlers.
// Actions without a handler get an error envelope.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
	token    string
}

func New() *Fake { return &Fake{handlers: map[string]HandlerFunc{}} }

func (f *Fake) On(action string, h HandlerFunc) *Fake {
	f.mu.Lock()
	f.handlers[action] = h
	f.mu.Unlock()
	return f
}

func (f *Fake) Invoke(ctx context.Context, action string, payload any) (*gateway.Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &gateway.TransportError{Action: action, Err: err}
	}
	f.mu.Lock()
	f.calls = append(f.calls, Call{Action: action, Payload: raw})
	h := f.handlers[action]
	f.mu.Unlock()

	if h == nil {
		return gateway.Failure("unknown action " + action), nil
	}
	return h(raw)
}

// SetToken and Token mirror gateway.Client so bearer handling can be checked.
func (f *Fake) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *Fake) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *Fake) Calls(action string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// OK is a success envelope around data; it panics if data does not encode.
func OK(data any) *gateway.Response {
	resp, err := gateway.Success(data)
	if err != nil {
		panic(err)
	}
	return resp
}

// Reply always answers with resp.
func Reply(resp *gateway.Response) HandlerFunc {
	return func(json.RawMessage) (*gateway.Response, error) { return resp, nil }
}

// Fail answers with a transport error.
func Fail(err error) HandlerFunc {
	return func(json.RawMessage) (*gateway.Response, error) {
		return nil, &gateway.TransportError{Action: "fake", Err: err}
	}
}
