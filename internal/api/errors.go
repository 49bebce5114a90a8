package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/gpt2gen/internal/inference"
	"github.com/samcharles93/gpt2gen/internal/tokenizer"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps an error to an HTTP status and an error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, inference.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, tokenizer.ErrTokenization):
		return http.StatusInternalServerError, "tokenization_error"
	case errors.Is(err, inference.ErrInferenceShape):
		return http.StatusInternalServerError, "inference_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
