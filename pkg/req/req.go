package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps a decoded request body.
const MaxBodyBytes int64 = 1 << 20

// ErrBodyTooLarge is returned when a body exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// Decode decodes a single JSON value of type T from body. Trailing data after
// the value is an error.
func Decode[T any](body io.Reader) (T, error) {
	var payload T
	dec := json.NewDecoder(body)
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload, errors.New("request body is empty")
		}
		return payload, err
	}
	if dec.More() {
		return payload, errors.New("request body must contain a single JSON value")
	}
	return payload, nil
}

// DecodeRequest decodes r's body into T, reading at most MaxBodyBytes.
func DecodeRequest[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()

	payload, err := Decode[T](body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return payload, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return payload, err
	}
	return payload, nil
}
