package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"billkeep/internal/core"
)

func TestIsDeliverable(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{token: "ExponentPushToken[abc123]", want: true},
		{token: "ExponentPushToken[", want: true},
		{token: "ExpoPushToken[abc]", want: false},
		{token: "random-device-id", want: false},
		{token: "", want: false},
	}
	for _, tt := range tests {
		if got := IsDeliverable(tt.token); got != tt.want {
			t.Errorf("IsDeliverable(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestFilterDeliverablePreservesOrder(t *testing.T) {
	in := []core.PushToken{
		{Token: "ExponentPushToken[b]"},
		{Token: "junk"},
		{Token: "ExponentPushToken[a]"},
	}
	got := FilterDeliverable(in)
	if len(got) != 2 || got[0].Token != "ExponentPushToken[b]" || got[1].Token != "ExponentPushToken[a]" {
		t.Fatalf("filtered = %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	upcoming := []core.ProjectedBill{
		{Bill: core.Bill{Name: "Rent", DueDay: 1, Amount: core.Money{Cents: 120000}}},
		{Bill: core.Bill{Name: "Gym", DueDay: 15, Amount: core.Money{Cents: 4000}}},
	}
	title, body := Summarize(upcoming)
	if title != "2 bills due soon" {
		t.Errorf("title = %q", title)
	}
	for _, want := range []string{"Rent (1200) due on day 1", "Gym (40) due on day 15"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q: %q", want, body)
		}
	}

	title, _ = Summarize(upcoming[:1])
	if title != "1 bill due soon" {
		t.Errorf("singular title = %q", title)
	}
}

func TestBuildBatch(t *testing.T) {
	tokens := []core.PushToken{{Token: "ExponentPushToken[a]"}, {Token: "ExponentPushToken[b]"}}
	msgs := BuildBatch(tokens, "2024-05", "title", "body")
	if len(msgs) != 2 {
		t.Fatalf("batch size = %d", len(msgs))
	}
	for i, m := range msgs {
		if m.To != tokens[i].Token || m.Title != "title" || m.Body != "body" || m.Sound != "default" {
			t.Errorf("message %d = %+v", i, m)
		}
		if m.Data["month"] != "2024-05" {
			t.Errorf("message %d month data = %v", i, m.Data)
		}
	}
}

func TestClientSend(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		var batch []Message
		if err := json.Unmarshal(raw, &batch); err != nil || len(batch) != 1 {
			t.Errorf("bad batch: %s", raw)
		}
		_, _ = w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"}]}`))
	}))
	defer gateway.Close()

	tickets, err := NewClient(gateway.URL).Send(context.Background(), []Message{{To: "ExponentPushToken[a]"}})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Status != "ok" || tickets[0].ID != "ticket-1" {
		t.Fatalf("tickets = %+v", tickets)
	}
}

func TestClientSendNonSuccessIsAggregateError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer gateway.Close()

	_, err := NewClient(gateway.URL).Send(context.Background(), []Message{{To: "ExponentPushToken[a]"}})
	if err == nil {
		t.Fatal("expected error for non-success gateway response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error does not carry gateway status: %v", err)
	}
}
