package mq

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed marks a message that can never be processed. Such messages
// are dead-lettered without a retry.
var ErrMalformed = errors.New("malformed message")

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return t, nil
}
