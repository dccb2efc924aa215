package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestInvokeSendsEnvelope(t *testing.T) {
	var got Request
	var auth string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-New-Token", "renewed")
		w.Write([]byte(`{"status":"success","data":{"url":"x"}}`))
	})
	c.SetToken("tok")

	resp, err := c.Invoke(context.Background(), "saveData", map[string]string{"email": "a@moe-dl.edu.my"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "saveData", got.Action)
	assert.JSONEq(t, `{"email":"a@moe-dl.edu.my"}`, string(got.Data))
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "renewed", c.Token())
}

func TestApplicationAndTransportErrorsAreDistinct(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		transport bool
	}{
		{
			name: "status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"error","message":"Emel tidak dijumpai"}`))
			},
		},
		{
			name: "html error page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`<html>bad gateway</html>`))
			},
			transport: true,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
			transport: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, tt.handler)
			_, err := Do(context.Background(), c, "login", nil, nil)
			require.Error(t, err)
			assert.Equal(t, tt.transport, IsTransport(err))
			assert.Equal(t, !tt.transport, IsApplication(err))
		})
	}
}

func TestInvokeUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/api/exec", time.Second)
	_, err := c.Invoke(context.Background(), "login", nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestAPILoginStoresToken(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp, _ := Success(model.LoginResponse{Email: "ali@moe-dl.edu.my", Role: model.RoleMember, Token: "jwt"})
		json.NewEncoder(w).Encode(resp)
	})
	out, err := NewAPI(c).Login(context.Background(), model.LoginRequest{Email: "ali@moe-dl.edu.my", IC: "1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, out.Role)
	assert.Equal(t, "jwt", c.Token())

	NewAPI(c).ClearToken()
	assert.Empty(t, c.Token())
}

func TestAPIUploadImageReturnsURL(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","url":"http://localhost/uploads/a.png"}`))
	})
	url, err := NewAPI(c).UploadImage(context.Background(), model.UploadRequest{Filename: "a", Base64: "AA=="})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/uploads/a.png", url)
}
