package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
)

func TestTransportError(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := &enherrors.TransportError{Method: "GET", URL: "https://gitlab.example/api", StatusCode: 401, Body: "unauthorized"}
		assert.Contains(t, err.Error(), "401")
		assert.True(t, enherrors.IsTransport(err))
	})

	t.Run("network failure unwraps", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &enherrors.TransportError{Method: "GET", URL: "u", Err: cause}
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("failed to fetch: %w", &enherrors.TransportError{StatusCode: 500})
		assert.True(t, enherrors.IsTransport(err))
		assert.False(t, enherrors.IsDecode(err))
	})
}

func TestTaxonomySentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"initialization", &enherrors.InitializationError{Missing: []string{"project id"}}, enherrors.ErrInitialization},
		{"discovery", &enherrors.DiscoveryExhaustedError{Attempts: 10}, enherrors.ErrDiscoveryExhausted},
		{"decode", &enherrors.DecodeError{Err: errors.New("eof")}, enherrors.ErrDecode},
		{"auth", &enherrors.AuthError{Operation: "update"}, enherrors.ErrAuth},
		{"match miss", &enherrors.MatchMissError{IID: 3, ID: 30}, enherrors.ErrMatchMiss},
		{"clipboard", &enherrors.ClipboardError{Err: errors.New("no display")}, enherrors.ErrClipboardDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.sentinel)
		})
	}
}

func TestMatchMissErrorNamesBothIdentifiers(t *testing.T) {
	err := &enherrors.MatchMissError{IID: 7, ID: 1234}
	assert.Equal(t, "no list item for merge request !7 (id 1234)", err.Error())
}
