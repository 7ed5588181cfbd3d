package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"receiver/logging"
	"receiver/metrics"
)

var (
	errEmptyBody    = errors.New("empty body")
	errTrailingData = errors.New("unexpected data after JSON value")
)

// IngressHandler accepts a JSON payload of any shape, writes it to the
// diagnostic sink and replies with a fixed acknowledgement. It keeps no state
// between requests.
type IngressHandler struct {
	Sink         *logrus.Logger
	Metrics      *metrics.Collector
	MaxBodyBytes int64
}

// NewIngressHandler creates a new IngressHandler. A nil sink means a text sink on stdout;
// a nil collector disables metrics; maxBodyBytes <= 0 means no limit.
func NewIngressHandler(sink *logrus.Logger, m *metrics.Collector, maxBodyBytes int64) *IngressHandler {
	if sink == nil {
		sink, _ = logging.NewSink("text", nil)
	}
	return &IngressHandler{
		Sink:         sink,
		Metrics:      m,
		MaxBodyBytes: maxBodyBytes,
	}
}

// ServeHTTP implements the http.Handler interface for IngressHandler.
func (h *IngressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	finish := func(string, int) {}
	if h.Metrics != nil {
		finish = h.Metrics.Begin()
	}

	body := r.Body
	if body == nil {
		body = http.NoBody
	}
	if h.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, body, h.MaxBodyBytes)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			finish(metrics.OutcomeTooLarge, len(raw))
			logAndReturnError(w, r, "Request body too large", http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Rejected body from %s: over %d bytes", r.RemoteAddr, tooLarge.Limit))
			return
		}
		finish(metrics.OutcomeInvalid, len(raw))
		logAndReturnError(w, r, "Unable to read request body", http.StatusBadRequest,
			fmt.Sprintf("Error reading body from %s: %v", r.RemoteAddr, err))
		return
	}

	payload, err := decodePayload(raw)
	if err != nil {
		finish(metrics.OutcomeInvalid, len(raw))
		logAndReturnError(w, r, "Invalid JSON body", http.StatusBadRequest,
			fmt.Sprintf("Invalid JSON body from %s: %v", r.RemoteAddr, err))
		return
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		// decodePayload already accepted raw, so this only happens on a bug
		finish(metrics.OutcomeInvalid, len(raw))
		logAndReturnError(w, r, "Invalid JSON body", http.StatusBadRequest, err.Error())
		return
	}

	h.Sink.WithFields(logrus.Fields{
		"remote_addr": r.RemoteAddr,
		"request_id":  GetRequestID(r.Context()),
		"bytes":       len(raw),
		"kind":        payloadKind(payload),
	}).Infof("Received data: %s", compact.String())

	writeJSON(w, http.StatusOK, Acknowledgement{Status: StatusSuccess, Message: MessageReceived})
	finish(metrics.OutcomeAccepted, len(raw))
}

// decodePayload parses raw as exactly one JSON value. Surrounding whitespace is
// allowed, anything else after the value is not. Numbers stay json.Number.
func decodePayload(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return payload, nil
}

func payloadKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
