package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/circleledger/internal/calculator"
	"github.com/mmynk/circleledger/internal/storage"
)

// connectError maps a domain or storage error onto the Connect code a client should see.
func connectError(err error) *connect.Error {
	switch {
	case calculator.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(msg string) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}
