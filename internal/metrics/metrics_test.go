package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentCountsRequests(t *testing.T) {
	m := New()
	h := m.Instrument("GET /api/comments", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/comments", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET /api/comments", "get", "400"))
	if got != 3 {
		t.Errorf("requests = %v, want 3", got)
	}
}

func TestCommentRead(t *testing.T) {
	m := New()
	m.CommentRead(true)
	m.CommentRead(false)
	m.CommentRead(false)

	if got := testutil.ToFloat64(m.CommentReads.WithLabelValues("marked")); got != 1 {
		t.Errorf("marked = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommentReads.WithLabelValues("noop")); got != 2 {
		t.Errorf("noop = %v, want 2", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.MessagesSent.Inc()
	m.PollItems.WithLabelValues("messages").Add(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"dd_messages_sent_total 1",
		`dd_poll_items_total{stream="messages"} 4`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
