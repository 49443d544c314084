package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
)

func TestErrorMsg(t *testing.T) {
	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{
			name: "simple error",
			err:  &perrors.Error{Code: perrors.ENotFound},
			msg:  "<not found>",
		},
		{
			name: "with message",
			err:  &perrors.Error{Code: perrors.ENotFound, Msg: "Articles with id 3 not found"},
			msg:  "Articles with id 3 not found",
		},
		{
			name: "with message and wrapped error",
			err: &perrors.Error{
				Code: perrors.EInternal,
				Msg:  "saving record",
				Err:  errors.New("disk full"),
			},
			msg: "saving record: disk full",
		},
		{
			name: "wrapped error only",
			err:  &perrors.Error{Code: perrors.EInternal, Err: errors.New("disk full")},
			msg:  "disk full",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.msg, c.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	nested := &perrors.Error{
		Op: "resource/Get",
		Err: &perrors.Error{
			Code: perrors.ENotFound,
			Msg:  "gone",
		},
	}
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(nested))
	assert.Equal(t, "resource/Get", perrors.ErrorOp(nested))
	assert.Equal(t, "gone", perrors.ErrorMessage(nested))

	assert.Equal(t, perrors.EInternal, perrors.ErrorCode(errors.New("plain")))
	assert.Equal(t, "", perrors.ErrorCode(nil))

	wrapped := fmt.Errorf("handler: %w", &perrors.Error{Code: perrors.EForbidden})
	assert.Equal(t, perrors.EForbidden, perrors.ErrorCode(wrapped))
}

func TestNewError(t *testing.T) {
	base := errors.New("boom")
	err := perrors.NewError(
		perrors.WithErrorCode(perrors.EInvalid),
		perrors.WithErrorMsg("bad key"),
		perrors.WithErrorOp("resource/Update"),
		perrors.WithErrorErr(base),
	)
	assert.Equal(t, perrors.EInvalid, err.Code)
	assert.Equal(t, "resource/Update", err.Op)
	assert.True(t, errors.Is(err, base))
}
