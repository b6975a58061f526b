package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindHTTP is a non-2xx status whose JSON body carried no error detail.
	KindHTTP
	// KindApplication is an error message embedded in the JSON body.
	KindApplication
	// KindDecode means the body could not be parsed as JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindApplication:
		return "application"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the single human-readable failure produced for a request.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether re-issuing the same request could succeed
// without the caller changing its input.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Status >= http.StatusInternalServerError
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var herr *Error
	if errors.As(err, &herr) {
		return herr, true
	}
	return nil, false
}

// Result is a successfully classified response.
type Result struct {
	Status  int
	Payload json.RawMessage
}

// Decode unmarshals the payload into v.
func (r *Result) Decode(v any) error {
	if r == nil || len(r.Payload) == 0 {
		return errors.New("empty payload")
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// ClassifyResponse turns a resty outcome into a Result or an *Error.
func ClassifyResponse(resp *resty.Response, err error) (*Result, error) {
	if err != nil {
		return nil, &Error{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("Network error: %v.", err),
			Err:     err,
		}
	}
	if resp == nil {
		return nil, &Error{Kind: KindNetwork, Message: "Network error: no response."}
	}
	return Classify(resp.StatusCode(), resp.Body())
}

// Classify parses the body regardless of status and decides success. A
// request succeeds only when the status is 2xx, the body is JSON and the body
// carries no embedded error. Otherwise the message prefers the embedded error,
// then a parse failure naming the status, then a generic HTTP message.
func Classify(status int, body []byte) (*Result, error) {
	success := status >= 200 && status < 300

	var parsed any
	parseErr := json.Unmarshal(bytes.TrimSpace(body), &parsed)

	if parseErr == nil {
		if msg := embeddedError(parsed, success); msg != "" {
			return nil, &Error{Kind: KindApplication, Status: status, Message: msg}
		}
		if success {
			return &Result{Status: status, Payload: json.RawMessage(bytes.TrimSpace(body))}, nil
		}
		return nil, &Error{Kind: KindHTTP, Status: status, Message: httpMessage(status)}
	}

	return nil, &Error{
		Kind:    KindDecode,
		Status:  status,
		Message: fmt.Sprintf("Invalid JSON response (Status: %d)", status),
		Err:     parseErr,
	}
}

// embeddedError returns the application error carried by a JSON object. The
// "message" key only counts as an error on non-2xx responses because
// successful panel actions use it for confirmations.
func embeddedError(parsed any, success bool) string {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return ""
	}
	if msg := stringField(obj["error"]); msg != "" {
		return msg
	}
	if !success {
		return stringField(obj["message"])
	}
	return ""
}

func stringField(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		if val {
			return "true"
		}
		return ""
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}

func httpMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("HTTP error %d: %s", status, text)
	}
	return fmt.Sprintf("HTTP error %d", status)
}
