package sender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
)

func TestOutcome_Retryable_Success(t *testing.T) {
	o := Outcome{StatusCode: 200}
	if o.Retryable() {
		t.Error("2xx should not be retryable")
	}
	if !o.Success() {
		t.Error("2xx should report Success")
	}
}

func TestOutcome_Retryable_TransportFailure(t *testing.T) {
	o := Outcome{StatusCode: 0, Error: context.DeadlineExceeded}
	if !o.Retryable() {
		t.Error("transport-level failure (StatusCode 0) should be retryable")
	}
}

func TestOutcome_Retryable_4xxNonRetryable(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 422} {
		o := Outcome{StatusCode: code}
		if o.Retryable() {
			t.Errorf("status %d should not be retryable", code)
		}
	}
}

func TestOutcome_Retryable_3xxNonRetryable(t *testing.T) {
	o := Outcome{StatusCode: 301}
	if o.Retryable() {
		t.Error("3xx should not be retryable")
	}
}

func TestOutcome_Retryable_408And429AreRetryable(t *testing.T) {
	for _, code := range []int{http.StatusRequestTimeout, http.StatusTooManyRequests} {
		o := Outcome{StatusCode: code}
		if !o.Retryable() {
			t.Errorf("status %d should be retryable", code)
		}
	}
}

func TestOutcome_Retryable_5xxRetryable(t *testing.T) {
	for _, code := range []int{500, 502, 503} {
		o := Outcome{StatusCode: code}
		if !o.Retryable() {
			t.Errorf("status %d should be retryable", code)
		}
	}
}

func TestSender_Send_Success(t *testing.T) {
	var gotSig, gotID, gotAttempt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Webhook-Signature")
		gotID = r.Header.Get("X-Webhook-Id")
		gotAttempt = r.Header.Get("X-Webhook-Attempt")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := New(DefaultConfig())
	msg := &domain.Message{
		ID:        "msg-1",
		Payload:   []byte(`{"hello":"world"}`),
		TargetURL: srv.URL,
		Signature: "sha256=deadbeef",
	}

	out := s.Send(context.Background(), msg, 2)

	if !out.Success() {
		t.Fatalf("expected success, got outcome %+v", out)
	}
	if gotSig != "sha256=deadbeef" {
		t.Errorf("signature header = %q, expected sha256=deadbeef", gotSig)
	}
	if gotID != "msg-1" {
		t.Errorf("id header = %q, expected msg-1", gotID)
	}
	if gotAttempt != "2" {
		t.Errorf("attempt header = %q, expected 2", gotAttempt)
	}
	if out.Body != `{"ok":true}` {
		t.Errorf("body = %q, expected echoed response body", out.Body)
	}
}

func TestSender_Send_NonRetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := New(DefaultConfig())
	msg := &domain.Message{ID: "msg-1", Payload: []byte(`{}`), TargetURL: srv.URL}

	out := s.Send(context.Background(), msg, 1)
	if out.Retryable() {
		t.Error("400 should not be retryable")
	}
}

func TestSender_Send_ConnectionRefused(t *testing.T) {
	s := New(DefaultConfig())
	msg := &domain.Message{ID: "msg-1", Payload: []byte(`{}`), TargetURL: "http://127.0.0.1:1"}

	out := s.Send(context.Background(), msg, 1)
	if out.Error == nil {
		t.Fatal("expected a transport error for an unreachable target")
	}
	if !out.Retryable() {
		t.Error("transport failure should be retryable")
	}
}

func TestSender_Send_RespectsContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	msg := &domain.Message{ID: "msg-1", Payload: []byte(`{}`), TargetURL: srv.URL}
	out := s.Send(ctx, msg, 1)
	if out.Error == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestSender_Send_DoesNotFollowRedirects(t *testing.T) {
	var hitTarget bool
	dest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitTarget = true
		w.WriteHeader(http.StatusOK)
	}))
	defer dest.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, dest.URL, http.StatusFound)
	}))
	defer srv.Close()

	s := New(DefaultConfig())
	msg := &domain.Message{ID: "msg-1", Payload: []byte(`{}`), TargetURL: srv.URL}

	out := s.Send(context.Background(), msg, 1)
	if hitTarget {
		t.Error("expected the redirect target to never be followed")
	}
	if out.StatusCode != http.StatusFound {
		t.Errorf("status = %d, expected the 302 itself to be surfaced", out.StatusCode)
	}
	if out.Retryable() {
		t.Error("a surfaced 3xx should be classified as non-retryable")
	}
}

func TestSender_Send_TruncatesBodyWithEllipsis(t *testing.T) {
	big := make([]byte, MaxCapturedBodyBytes+100)
	for i := range big {
		big[i] = 'x'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(big)
	}))
	defer srv.Close()

	s := New(DefaultConfig())
	msg := &domain.Message{ID: "msg-1", Payload: []byte(`{}`), TargetURL: srv.URL}

	out := s.Send(context.Background(), msg, 1)
	if len(out.Body) != MaxCapturedBodyBytes+len("...") {
		t.Errorf("body length = %d, expected truncated body plus ellipsis", len(out.Body))
	}
	if out.Body[len(out.Body)-3:] != "..." {
		t.Errorf("expected truncated body to end with an ellipsis marker, got %q", out.Body[len(out.Body)-10:])
	}
}

func TestSender_Send_ShortBodyNotTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := New(DefaultConfig())
	msg := &domain.Message{ID: "msg-1", Payload: []byte(`{}`), TargetURL: srv.URL}

	out := s.Send(context.Background(), msg, 1)
	if out.Body != `{"ok":true}` {
		t.Errorf("body = %q, expected no truncation or ellipsis on a short body", out.Body)
	}
}

func TestSender_Send_CustomHeadersForwarded(t *testing.T) {
	var gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCustom = r.Header.Get("X-Custom")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(DefaultConfig())
	msg := &domain.Message{
		ID:        "msg-1",
		Payload:   []byte(`{}`),
		TargetURL: srv.URL,
		Headers:   map[string]string{"X-Custom": "value"},
	}

	s.Send(context.Background(), msg, 1)
	if gotCustom != "value" {
		t.Errorf("custom header forwarded = %q, expected value", gotCustom)
	}
}
