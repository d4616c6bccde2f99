package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumberCommand builds a write request from a number command payload.
func NumberCommand(key, payload string) (WriteNumberRequest, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		return WriteNumberRequest{}, fmt.Errorf("number %s: invalid payload %q: %w", key, payload, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return WriteNumberRequest{}, fmt.Errorf("number %s: payload %q is not a finite number", key, payload)
	}
	return WriteNumberRequest{
		Key:   key,
		Value: value,
	}, nil
}
