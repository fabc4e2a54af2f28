package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		is   func(error) bool
		kind error
	}{
		{name: "transport", err: Transport("search", cause), is: IsTransport, kind: ErrTransport},
		{name: "not found", err: NotFound("search", nil), is: IsNotFound, kind: ErrNotFound},
		{name: "persistence", err: Persistence("save tracked", fs.ErrPermission), is: IsPersistence, kind: ErrPersistence},
		{name: "client", err: ClientConnection("login", cause), is: IsClientConnection, kind: ErrClientConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.ErrorIs(t, tt.err, tt.kind)

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.is(wrapped))
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := Persistence("save tracked", fs.ErrPermission)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.False(t, IsTransport(err))
	assert.Equal(t, "save tracked: persistence error: permission denied", err.Error())
}

func TestErrorWithoutCause(t *testing.T) {
	err := NotFound("search", nil)
	assert.Equal(t, "search: not found", err.Error())
}
