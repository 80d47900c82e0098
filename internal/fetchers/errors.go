package fetchers

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrServiceUnavailable is returned when the forecast API answers 503.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrRequestFailed matches every *RequestError.
	ErrRequestFailed = errors.New("request failed")
)

// RequestError is a non-2xx answer other than 503.
type RequestError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is(err, ErrRequestFailed) match any RequestError.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// statusError classifies an HTTP status; nil for 2xx.
func statusError(status int, url string, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrServiceUnavailable, url)
	default:
		const maxBody = 200
		if len(body) > maxBody {
			body = body[:maxBody]
		}
		return &RequestError{StatusCode: status, URL: url, Body: string(body)}
	}
}

// outcome is the metrics label for a finished request.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, ErrRequestFailed):
		return "failed"
	default:
		return "error"
	}
}
