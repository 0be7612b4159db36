// Package gateway exposes the HTTP surface of the order gateway: content-type
// dispatch between the JSON and binary channels, canonicalisation, the
// backend call, and symmetric re-encoding of the response.
package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drblury/ordergate/internal/backend"
	"github.com/drblury/ordergate/internal/codec"
	"github.com/drblury/ordergate/internal/jsoncodec"
	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/order"
)

const maxBodyBytes = 1 << 20

// OrderService is the backend contract the gateway depends on. The gRPC
// client implements it; tests plug in fakes.
type OrderService interface {
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.OrderResponse, error)
	GetOrders(ctx context.Context) (order.OrdersList, error)
}

// EventSink accepts derived payment events without blocking. The relay
// implements it; Enqueue reports whether the event was accepted, which the
// gateway treats as advisory only.
type EventSink interface {
	Enqueue(ev order.PaymentEvent) bool
}

// Handler serves the order routes. It keeps no per-request state; concurrent
// requests share only the backend client and the event sink, both safe for
// concurrent use.
type Handler struct {
	svc     OrderService
	sink    EventSink
	logger  logging.ServiceLogger
	metrics *metrics
}

// New builds a Handler. reg may be nil to disable gateway metrics.
func New(svc OrderService, sink EventSink, logger logging.ServiceLogger, reg prometheus.Registerer) *Handler {
	return &Handler{
		svc:     svc,
		sink:    sink,
		logger:  logger,
		metrics: newMetrics(reg),
	}
}

// Routes returns the chi router serving the gateway surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.createOrder)
	r.Get("/", h.listOrders)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	enc := codec.FromContentType(r.Header.Get("Content-Type"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		h.metrics.observe("create_order", enc.String(), http.StatusBadRequest, start)
		return
	}

	req, err := codec.DecodeCreateOrder(enc, body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		h.metrics.observe("create_order", enc.String(), http.StatusBadRequest, start)
		return
	}

	// The backend call and the event publish outlive a client disconnect;
	// only the per-call deadline bounds them.
	ctx := context.WithoutCancel(r.Context())

	resp, err := h.svc.CreateOrder(ctx, req)
	if err != nil {
		status := backendStatus(err)
		h.writeError(w, status, err)
		h.metrics.observe("create_order", enc.String(), status, start)
		return
	}

	// Publish is decoupled from the response path: the relay may still be
	// delivering after the client has its answer, and a failed publish never
	// fails the order.
	h.sink.Enqueue(order.PaymentEvent{OrderID: resp.OrderID, UserID: req.UserID, Status: resp.Status})

	payload, err := codec.EncodeOrderResponse(enc, resp)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		h.metrics.observe("create_order", enc.String(), http.StatusInternalServerError, start)
		return
	}

	h.writePayload(w, enc, payload)
	h.metrics.observe("create_order", enc.String(), http.StatusOK, start)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	enc := codec.FromContentType(r.Header.Get("Content-Type"))

	ctx := context.WithoutCancel(r.Context())
	list, err := h.svc.GetOrders(ctx)
	if err != nil {
		status := backendStatus(err)
		h.writeError(w, status, err)
		h.metrics.observe("list_orders", enc.String(), status, start)
		return
	}

	payload, err := codec.EncodeOrdersList(enc, list)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		h.metrics.observe("list_orders", enc.String(), http.StatusInternalServerError, start)
		return
	}

	h.writePayload(w, enc, payload)
	h.metrics.observe("list_orders", enc.String(), http.StatusOK, start)
}

// backendStatus distinguishes a backend that could not be reached from one
// that answered with a failure.
func backendStatus(err error) int {
	var unavailable *backend.UnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writePayload emits the encoded body with the same encoding family the
// request arrived in. Content-Length is the byte length of the payload.
func (h *Handler) writePayload(w http.ResponseWriter, enc codec.Encoding, payload []byte) {
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	if enc == codec.EncodingBinary {
		w.Header().Set("Cache-Control", "no-cache")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.Error("writing response", err, nil)
	}
}

// writeError reports a failure. Error bodies are always JSON; the binary
// channel defines no error envelope, so a binary client reads the status
// code and falls back to the JSON body for detail.
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Error("request failed", err, logging.LogFields{"status": status})

	body, marshalErr := jsoncodec.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", codec.ContentTypeJSON)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
