package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	ErrBackendData      = errors.New("backend returned inconsistent data")
	ErrBusy             = errors.New("another request is in flight")
	ErrGuessNotAccepted = errors.New("guess is not accepted in the current state")
	ErrUnknownOption    = errors.New("option is not part of the current round")
	ErrStaleResponse    = errors.New("response belongs to a superseded round")
	ErrUsernameRequired = errors.New("username is required")
	ErrNotLoggedIn      = errors.New("no player is logged in")
)

// APIError - failure of one backend call. Err is one of the taxonomy sentinels, Cause the underlying failure if any.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
	Cause   error
}

func (that *APIError) Error() string {
	switch {
	case that.Status != 0 && that.Message != "":
		return fmt.Sprintf("%s: %s (status %d): %s", that.Op, that.Err, that.Status, that.Message)
	case that.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", that.Op, that.Err, that.Status)
	case that.Message != "":
		return fmt.Sprintf("%s: %s: %s", that.Op, that.Err, that.Message)
	default:
		return fmt.Sprintf("%s: %s", that.Op, that.Err)
	}
}

func (that *APIError) Unwrap() []error {
	if that.Cause == nil {
		return []error{that.Err}
	}

	return []error{that.Err, that.Cause}
}

// UserMessage - the text worth showing to a player for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	switch {
	case errors.Is(err, ErrNetwork):
		return "Could not reach the game server. Please try again."
	case errors.Is(err, ErrServer):
		return "The game server had a problem. Please try again."
	case errors.Is(err, ErrUsernameRequired):
		return "Username is required"
	default:
		return err.Error()
	}
}
