package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"billkeep/internal/core"
)

func TestConfigured(t *testing.T) {
	if NewClient("http://x", "", "m").Configured() {
		t.Fatal("empty key reported as configured")
	}
	if !NewClient("http://x", "sk-123", "m").Configured() {
		t.Fatal("non-empty key reported as unconfigured")
	}
}

func TestBuildGrounding(t *testing.T) {
	bills := []core.ProjectedBill{
		{Bill: core.Bill{ID: "rent", Name: "Rent", DueDay: 1, Amount: core.Money{Cents: 120000}, Notes: "transfer"}, IsPaid: true},
		{Bill: core.Bill{ID: "gym", Name: "Gym", DueDay: 15, Amount: core.Money{Cents: 4000}}},
	}
	got := BuildGrounding("2024-05", bills, core.Sum(bills))

	for _, want := range []string{
		"2024-05",
		"Rent (id rent)",
		"due day 1",
		"PAID",
		"notes: transfer",
		"Gym (id gym)",
		"UNPAID",
		"due 1240",
		"paid 1200",
		"remaining 40",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("grounding missing %q:\n%s", want, got)
		}
	}
}

func TestBuildGroundingEmptyStore(t *testing.T) {
	got := BuildGrounding("2024-05", nil, core.Totals{})
	if !strings.Contains(got, "no bills registered") {
		t.Fatalf("grounding = %q", got)
	}
}

func TestCompleteRelaysFirstChoiceTrimmed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"\n  hello  \n"}},{"message":{"role":"assistant","content":"second"}}]}`))
	}))
	defer upstream.Close()

	got, err := NewClient(upstream.URL, "k", "m").Complete(context.Background(), "sys", "q")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "hello" {
		t.Fatalf("reply = %q, want first choice trimmed", got)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer upstream.Close()

	_, err := NewClient(upstream.URL, "k", "m").Complete(context.Background(), "sys", "q")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstreamErr.Status != http.StatusTooManyRequests || upstreamErr.Message != "rate limited" {
		t.Fatalf("upstream error = %+v", upstreamErr)
	}
}

func TestCompleteTransportFault(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	upstream.Close() // connection refused

	_, err := NewClient(upstream.URL, "k", "m").Complete(context.Background(), "sys", "q")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstreamErr.Status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", upstreamErr.Status)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer upstream.Close()

	_, err := NewClient(upstream.URL, "k", "m").Complete(context.Background(), "sys", "q")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
