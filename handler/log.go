package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func logRequest(req *http.Request, status, bytes int, elapsed time.Duration) {
	entry := log.WithFields(logrus.Fields{
		"status":      status,
		"bytes":       bytes,
		"duration_ms": elapsed.Milliseconds(),
		"request_id":  GetRequestID(req.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.Errorf("%s -- %s -- %s", req.RemoteAddr, req.Method, req.URL.Path)
		return
	}
	entry.Infof("%s -- %s -- %s", req.RemoteAddr, req.Method, req.URL.Path)
}

func logAndReturnError(w http.ResponseWriter, req *http.Request, httpResponseStr string, code int, consoleStr ...string) {
	// consoleStr is optional.
	msg := httpResponseStr
	if len(consoleStr) > 0 {
		msg = consoleStr[0]
	}
	entry := log.WithField("request_id", GetRequestID(req.Context()))
	if code >= http.StatusInternalServerError {
		entry.Errorln(msg)
	} else {
		entry.Warnln(msg)
	}
	writeJSON(w, code, ErrorResponse{Detail: httpResponseStr})
}

// RequestLogger writes one line per request once the response is complete.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			logRequest(r, ww.Status(), ww.BytesWritten(), time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}
