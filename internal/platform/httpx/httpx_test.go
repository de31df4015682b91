package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/platform/requestctx"
)

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	t.Parallel()

	called := ""
	mw := func(mark string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called += mark
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called += "h"
		w.WriteHeader(http.StatusNoContent)
	}), mw("1"), nil, mw("2"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if called != "12h" {
		t.Fatalf("call order = %q, want %q", called, "12h")
	}
}

func TestRequireMethodRejectsUnexpectedMethod(t *testing.T) {
	t.Parallel()

	h := RequireMethod(http.MethodGet)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
	if got := rr.Header().Get("Allow"); got != http.MethodGet {
		t.Fatalf("Allow = %q, want %q", got, http.MethodGet)
	}
}

func TestRequestIDAddsUUIDWhenMissing(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a uuid: %v", seen, err)
	}
	if got := rr.Header().Get(RequestIDHeader); got != seen {
		t.Fatalf("response id = %q, want %q", got, seen)
	}
}

func TestRequestIDPreservesIncoming(t *testing.T) {
	t.Parallel()

	var fromContext string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		fromContext = requestctx.RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != "req-1" {
		t.Fatalf("response id = %q, want req-1", got)
	}
	if fromContext != "req-1" {
		t.Fatalf("context id = %q, want req-1", fromContext)
	}
}

func TestRecoverPanicWrites500AndLogs(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var lines []string
	logf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	h := RecoverPanic(logf)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if len(lines) != 1 || !strings.Contains(lines[0], "panic=boom") {
		t.Fatalf("log lines = %v", lines)
	}
}

func TestAccessLogRecordsStatus(t *testing.T) {
	t.Parallel()

	var line string
	h := AccessLog(func(format string, args ...any) {
		line = fmt.Sprintf(format, args...)
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))
	if !strings.Contains(line, "status=418") || !strings.Contains(line, "path=/brew") {
		t.Fatalf("log line = %q", line)
	}
}

func TestWriteErrorMapsDomainCode(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	err := apperrors.WithMetadata(apperrors.CodeEventNotFound, "missing", map[string]string{"EventID": "evt-9"})
	WriteError(rr, fmt.Errorf("load: %w", err), "en-US")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	var body map[string]ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"].Code != "EVENT_NOT_FOUND" {
		t.Fatalf("code = %q, want EVENT_NOT_FOUND", body["error"].Code)
	}
	if body["error"].Message != "Event evt-9 was not found." {
		t.Fatalf("message = %q", body["error"].Message)
	}
}

func TestWriteErrorHidesCacheMissAndPlainErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{errors.New("boom"), apperrors.New(apperrors.CodeCacheMiss, "miss")} {
		rr := httptest.NewRecorder()
		WriteError(rr, err, "en-US")
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
		}
		if !strings.Contains(rr.Body.String(), `"code":"UNKNOWN"`) {
			t.Fatalf("body = %s", rr.Body.String())
		}
	}
}
