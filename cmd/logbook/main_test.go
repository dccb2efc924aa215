package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/review"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"fields", validate.New(errors.New("bad"), validate.FieldError{Field: "email", Error: "required"}, validate.FieldError{Field: "ic", Error: "required"}), "email: required; ic: required"},
		{"no fields", validate.New(errors.New("bad")), "bad"},
		{"transport", &gateway.TransportError{Action: "login", Err: errors.New("refused")}, "tidak dapat menghubungi pelayan (gateway login: refused)"},
		{"application", &gateway.ApplicationError{Action: "login", Message: "IC salah"}, "IC salah"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}
}

func TestReplay(t *testing.T) {
	pad := review.NewRasterPad(40, 20)
	require.NoError(t, replay(pad, ""))
	assert.Equal(t, review.PadEmpty, pad.State())

	path := filepath.Join(t.TempDir(), "strokes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[[{"x":0.1,"y":0.5},{"x":0.9,"y":0.5}],[]]`), 0o644))
	require.NoError(t, replay(pad, path))
	assert.Equal(t, review.PadCaptured, pad.State())

	ref, err := pad.ImageRef()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "data:image/png;base64,"), ref)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	assert.Error(t, replay(pad, path))
}

func TestParseID(t *testing.T) {
	id, err := parseID("1735689600000")
	require.NoError(t, err)
	assert.Equal(t, int64(1735689600000), id)

	_, err = parseID("abc")
	assert.Error(t, err)
}
