package hertz

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WessleyAI/rentscout/engine/classify"
	"github.com/WessleyAI/rentscout/engine/domain"
)

func testConfig() domain.SearchConfig {
	return domain.SearchConfig{
		PickupLocation:     "DWHX90",
		PickupLocationName: "Darmstadt - Hauptbahnhof",
		PickupTime:         "12:00",
		ReturnTime:         "10:30",
		Age:                "25",
		CDP:                "123456",
		RateQualifier:      "BEST",
	}
}

func testCombo() domain.DateCombination {
	p := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return domain.DateCombination{Pickup: p, Return: r, Days: 9}
}

func TestBuilder_Payload(t *testing.T) {
	raw, err := Builder{}.Build(testConfig(), testCombo())
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["metadata"]["isReviewModify"] != false {
		t.Errorf("metadata: %v", got["metadata"])
	}

	it := got["itinerary"]
	want := map[string]any{
		"age":                "25",
		"pickupLocationCode": "DWHX90",
		"pickupLocationName": "Darmstadt - Hauptbahnhof",
		"returnLocationCode": "",
		"pickupDate":         "01/03/2026",
		"pickupTime":         "12:00",
		"militaryClock":      float64(1),
		"returnDate":         "10/03/2026",
		"returnTime":         "10:30",
		"cdp":                "123456",
		"rq":                 "BEST",
		"useRewardPoints":    "N",
		"fromLocationSearch": false,
		"affiliateCallCount": float64(0),
		"officialTravel":     "off",
	}
	for k, v := range want {
		if it[k] != v {
			t.Errorf("itinerary[%s] = %#v, want %#v", k, it[k], v)
		}
	}
	if len(it) != 30 {
		t.Errorf("expected 30 itinerary fields, got %d", len(it))
	}
}

func TestBuilder_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.PickupLocation = ""
	_, err := Builder{}.Build(cfg, testCombo())
	if !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}

	bad := testCombo()
	bad.Return = bad.Pickup
	if _, err := (Builder{}).Build(testConfig(), bad); err == nil {
		t.Fatal("expected error for a zero-length combination")
	}
}

func TestClient_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("Accept") != "application/json" {
			t.Errorf("headers = %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		var p Payload
		if err := json.Unmarshal(body, &p); err != nil || p.Itinerary.PickupDate != "01/03/2026" {
			t.Errorf("payload = %s (%v)", body, err)
		}
		w.Header().Set("X-Request-Id", "req-9")
		w.Write([]byte(`{"data":{"model":{"vehicles":[]}}}`))
	}))
	defer srv.Close()

	payload, _ := Builder{}.Build(testConfig(), testCombo())
	out := NewClient(5*time.Second).Post(context.Background(), srv.URL, payload)

	ok, isOK := out.(classify.OK)
	if !isOK {
		t.Fatalf("expected OK, got %#v", out)
	}
	if ok.Status != 200 || ok.Header.Get("X-Request-Id") != "req-9" || len(ok.Body) == 0 {
		t.Fatalf("unexpected OK: %+v", ok)
	}
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	out := NewClientWith(srv.Client()).Post(context.Background(), srv.URL, Payload{})
	he, ok := out.(classify.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %#v", out)
	}
	if he.Status != 429 || he.StatusText != "Too Many Requests" || he.Header.Get("Retry-After") != "30" {
		t.Fatalf("unexpected HTTPError: %+v", he)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := NewClient(time.Second).Post(context.Background(), url, Payload{})
	te, ok := out.(classify.TransportError)
	if !ok {
		t.Fatalf("expected TransportError, got %#v", out)
	}
	if te.Message == "" {
		t.Fatal("transport error should carry a message")
	}
}

func TestClient_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := NewClient(0).Post(ctx, srv.URL, Payload{})
	te, ok := out.(classify.TransportError)
	if !ok || te.Kind != classify.TransportCanceled {
		t.Fatalf("expected canceled transport error, got %#v", out)
	}
}
