package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fulldump/box"
	"github.com/google/uuid"
)

var ErrPanic = errors.New("internal panic")

// RecoverFromPanic turns a panic in a handler into an error response.
func RecoverFromPanic(next box.H) box.H {
	return func(ctx context.Context) {
		defer func() {
			if p := recover(); p != nil {
				debug.PrintStack()
				box.SetError(ctx, fmt.Errorf("%w: %v", ErrPanic, p))
			}
		}()
		next(ctx)
	}
}

// AccessLog writes one line per request. Every request gets an X-Request-Id,
// the one sent by the client or a new one.
func AccessLog(l *log.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			w := box.GetResponse(ctx)

			requestId := r.Header.Get("X-Request-Id")
			if requestId == "" {
				requestId = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", requestId)

			now := time.Now()
			defer func() {
				l.Println(now.UTC().Format(time.RFC3339Nano), requestId, formatRemoteAddr(r), r.Method, r.URL.String(), time.Since(now))
			}()

			next(ctx)
		}
	}
}

func formatRemoteAddr(r *http.Request) string {
	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	i := strings.LastIndex(r.RemoteAddr, ":")
	if i < 0 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[0:i]
}
