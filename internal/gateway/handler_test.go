package gateway

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"google.golang.org/grpc/codes"

	"github.com/drblury/ordergate/internal/backend"
	"github.com/drblury/ordergate/internal/events"
	"github.com/drblury/ordergate/internal/jsoncodec"
	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/order"
)

type fakeService struct {
	createOrder func(context.Context, order.CreateOrderRequest) (order.OrderResponse, error)
	getOrders   func(context.Context) (order.OrdersList, error)
}

func (f fakeService) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.OrderResponse, error) {
	return f.createOrder(ctx, req)
}

func (f fakeService) GetOrders(ctx context.Context) (order.OrdersList, error) {
	return f.getOrders(ctx)
}

type captureSink struct {
	mu     sync.Mutex
	events []order.PaymentEvent
}

func (c *captureSink) Enqueue(ev order.PaymentEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return true
}

func (c *captureSink) all() []order.PaymentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]order.PaymentEvent(nil), c.events...)
}

func demoHandler() (*Handler, *captureSink) {
	sink := &captureSink{}
	svc := fakeService{
		createOrder: func(_ context.Context, req order.CreateOrderRequest) (order.OrderResponse, error) {
			return order.OrderResponse{OrderID: req.UserID, Status: "PENDING"}, nil
		},
		getOrders: func(context.Context) (order.OrdersList, error) {
			return order.OrdersList{Items: []order.Item{{ProductID: "PRO1", Quantity: 10}, {ProductID: "PRO2", Quantity: 20}}}, nil
		},
	}
	return New(svc, sink, logging.Nop(), nil), sink
}

func TestCreateOrderJSONScenario(t *testing.T) {
	h, sink := demoHandler()

	body := `{"userId":42,"items":[{"productId":"PRO1","quantity":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Body.String() != `{"orderId":42,"status":"PENDING"}` {
		t.Fatalf("unexpected body: %s", rec.Body)
	}

	events := sink.all()
	if len(events) != 1 || events[0].OrderID != 42 || events[0].UserID != 42 || events[0].Status != "PENDING" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestCreateOrderBinaryScenario(t *testing.T) {
	h, _ := demoHandler()

	canonical := order.CreateOrderRequest{UserID: 42, Items: []order.Item{{ProductID: "PRO1", Quantity: 3}}}
	payload, err := canonical.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("expected no-cache on binary responses, got %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != strconv.Itoa(rec.Body.Len()) {
		t.Fatalf("content-length %q does not match body length %d", got, rec.Body.Len())
	}

	var resp order.OrderResponse
	if err := resp.UnmarshalBinary(rec.Body.Bytes()); err != nil {
		t.Fatalf("binary response does not decode: %v", err)
	}
	if resp.OrderID != 42 || resp.Status != "PENDING" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestResponseEncodingMatchesRequestEncoding(t *testing.T) {
	h, _ := demoHandler()

	cases := []struct {
		contentTypeIn  string
		contentTypeOut string
	}{
		{"application/json", "application/json"},
		{"application/octet-stream", "application/octet-stream"},
		{"", "application/json"},
		{"text/plain", "application/json"},
		{"application/json; charset=utf-8", "application/json"},
	}

	for _, tc := range cases {
		var body []byte
		if tc.contentTypeIn == "application/octet-stream" {
			body, _ = order.CreateOrderRequest{UserID: 1}.MarshalBinary()
		} else {
			body = []byte(`{"userId":1,"items":[]}`)
		}

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(body))
		if tc.contentTypeIn != "" {
			req.Header.Set("Content-Type", tc.contentTypeIn)
		}
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("content type %q: unexpected status %d", tc.contentTypeIn, rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != tc.contentTypeOut {
			t.Errorf("content type %q: response type %q, want %q", tc.contentTypeIn, got, tc.contentTypeOut)
		}
	}
}

func TestCreateOrderEmptyBinaryBodyUsesDefaults(t *testing.T) {
	h, _ := demoHandler()

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(nil))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("empty binary body must not be rejected, got %d", rec.Code)
	}
	var resp order.OrderResponse
	if err := resp.UnmarshalBinary(rec.Body.Bytes()); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp.OrderID != 0 || resp.Status != "PENDING" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestMalformedBodyIsClientError(t *testing.T) {
	h, sink := demoHandler()

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"userId":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := jsoncodec.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected error message in body")
	}
	if len(sink.all()) != 0 {
		t.Fatal("no event must be published for a rejected request")
	}
}

func TestBackendFailuresGetDistinctStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unavailable", &backend.UnavailableError{Err: errors.New("connection refused")}, http.StatusBadGateway},
		{"rejected", &backend.RejectedError{Code: codes.InvalidArgument, Message: "no items"}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &captureSink{}
			h := New(fakeService{
				createOrder: func(context.Context, order.CreateOrderRequest) (order.OrderResponse, error) {
					return order.OrderResponse{}, tc.err
				},
			}, sink, logging.Nop(), nil)

			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"userId":1}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if len(sink.all()) != 0 {
				t.Fatal("no event must be published for a failed order")
			}
		})
	}
}

func TestListOrdersJSON(t *testing.T) {
	h, _ := demoHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Body.String() != `[{"productId":"PRO1","quantity":10},{"productId":"PRO2","quantity":20}]` {
		t.Fatalf("unexpected body: %s", rec.Body)
	}
}

func TestListOrdersBinary(t *testing.T) {
	h, _ := demoHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var list order.OrdersList
	if err := list.UnmarshalBinary(rec.Body.Bytes()); err != nil {
		t.Fatalf("binary list does not decode: %v", err)
	}
	if len(list.Items) != 2 || list.Items[0].ProductID != "PRO1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestBothEncodingsYieldIdenticalCanonicalResults(t *testing.T) {
	h, sink := demoHandler()
	canonical := order.CreateOrderRequest{UserID: 42, Items: []order.Item{{ProductID: "PRO1", Quantity: 3}}}

	jsonReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"userId":42,"items":[{"productId":"PRO1","quantity":3}]}`))
	jsonReq.Header.Set("Content-Type", "application/json")
	jsonRec := httptest.NewRecorder()
	h.Routes().ServeHTTP(jsonRec, jsonReq)

	binBody, _ := canonical.MarshalBinary()
	binReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(binBody))
	binReq.Header.Set("Content-Type", "application/octet-stream")
	binRec := httptest.NewRecorder()
	h.Routes().ServeHTTP(binRec, binReq)

	var fromJSON order.OrderResponse
	if err := jsoncodec.Unmarshal(jsonRec.Body.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json response does not parse: %v", err)
	}
	var fromBinary order.OrderResponse
	if err := fromBinary.UnmarshalBinary(binRec.Body.Bytes()); err != nil {
		t.Fatalf("binary response does not parse: %v", err)
	}
	if fromJSON != fromBinary {
		t.Fatalf("canonical responses differ: %+v vs %+v", fromJSON, fromBinary)
	}

	events := sink.all()
	if len(events) != 2 || events[0] != events[1] {
		t.Fatalf("expected identical events from both encodings: %+v", events)
	}
}

func TestCreateOrderWithEventsDisabled(t *testing.T) {
	svc := fakeService{
		createOrder: func(_ context.Context, req order.CreateOrderRequest) (order.OrderResponse, error) {
			return order.OrderResponse{OrderID: req.UserID, Status: "PENDING"}, nil
		},
	}
	h := New(svc, events.NopSink{}, logging.Nop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"userId":7,"items":[{"productId":"PRO1","quantity":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != `{"orderId":7,"status":"PENDING"}` {
		t.Fatalf("unexpected body: %s", rec.Body)
	}
}

func TestHealthz(t *testing.T) {
	h, _ := demoHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body)
	}
}
