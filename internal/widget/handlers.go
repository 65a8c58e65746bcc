package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"currency-crossover/internal/calculator"
	"currency-crossover/internal/handlers"
	"currency-crossover/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handler serves the session API.
type Handler struct {
	store    *Store
	validate *validator.Validate
	upgrader websocket.Upgrader
}

// NewHandler creates the session API. allowedOrigins governs which browser
// origins may open the live stream; "*" allows any.
func NewHandler(store *Store, allowedOrigins []string) *Handler {
	return &Handler{
		store:    store,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Create handles POST /sessions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "create")
	defer span.End()

	s := h.store.Create(ctx)
	span.SetAttributes(attribute.String("session.id", s.ID()))
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusCreated, s.View())
}

// Get handles GET /sessions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	_, span := h.start(r, "get")
	defer span.End()

	s, ok := h.session(w, r, span, "get")
	if !ok {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, s.View())
}

// Delete handles DELETE /sessions/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(ctx, id); err != nil {
		h.fail(w, r, span, "delete", "session not found", err, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Keys handles POST /sessions/{id}/keys
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "keys")
	defer span.End()

	s, ok := h.session(w, r, span, "keys")
	if !ok {
		return
	}

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, span, "keys", "invalid request body", err, http.StatusBadRequest)
		return
	}

	raw := req.Keys
	if req.Key != "" {
		raw = append([]string{req.Key}, raw...)
	}
	if len(raw) == 0 {
		h.fail(w, r, span, "keys", "no keys provided", errors.New("key and keys are empty"), http.StatusBadRequest)
		return
	}

	keys := make([]calculator.Key, 0, len(raw))
	for _, text := range raw {
		k, err := calculator.ParseKey(text)
		if err != nil {
			h.fail(w, r, span, "keys", err.Error(), err, http.StatusBadRequest)
			return
		}
		keys = append(keys, k)
	}
	span.SetAttributes(attribute.Int("widget.keys", len(keys)))

	view, err := s.Press(ctx, keys...)
	h.respond(w, r, span, "keys", view, err)
}

// Mode handles PUT /sessions/{id}/mode
func (h *Handler) Mode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "mode")
	defer span.End()

	s, ok := h.session(w, r, span, "mode")
	if !ok {
		return
	}

	var req ModeRequest
	if !h.decode(w, r, span, "mode", &req) {
		return
	}

	view, err := s.SetMode(ctx, req.Mode == calculator.ModeCurrency.String())
	h.respond(w, r, span, "mode", view, err)
}

// Currencies handles PUT /sessions/{id}/currencies
func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "currencies")
	defer span.End()

	s, ok := h.session(w, r, span, "currencies")
	if !ok {
		return
	}

	var req CurrenciesRequest
	if !h.decode(w, r, span, "currencies", &req) {
		return
	}
	if req.From == "" && req.To == "" {
		h.fail(w, r, span, "currencies", "no currency provided", errors.New("from and to are empty"), http.StatusBadRequest)
		return
	}

	view, err := s.SelectCurrencies(ctx, req.From, req.To)
	h.respond(w, r, span, "currencies", view, err)
}

// ChartSVG handles GET /sessions/{id}/chart.svg
func (h *Handler) ChartSVG(w http.ResponseWriter, r *http.Request) {
	_, span := h.start(r, "chart")
	defer span.End()

	s, ok := h.session(w, r, span, "chart")
	if !ok {
		return
	}

	ch, ok := s.Chart()
	if !ok {
		handlers.WriteError(w, http.StatusNotFound, "no chart rendered")
		return
	}

	w.Header().Set("Content-Type", ch.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(ch.Body)
}

func (h *Handler) start(r *http.Request, op string) (context.Context, trace.Span) {
	return tracer.Start(r.Context(), "widget.http."+op, trace.WithAttributes(
		attribute.String("request.id", observability.RequestIDFromContext(r.Context())),
	))
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request, span trace.Span, op string) (*Session, bool) {
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	s, err := h.store.Get(id)
	if err != nil {
		h.fail(w, r, span, op, "session not found", fmt.Errorf("%w: %s", err, id), http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, span trace.Span, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.fail(w, r, span, op, "invalid request body", err, http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.fail(w, r, span, op, "invalid request", err, http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, span trace.Span, op string, view View, err error) {
	if errors.Is(err, ErrSessionClosed) {
		h.fail(w, r, span, op, "session closed", err, http.StatusGone)
		return
	}
	span.SetAttributes(attribute.String("widget.display", view.Display))
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, op, msg string, err error, status int) {
	ctx := r.Context()
	observability.RecordError(ctx, span, observability.LoggerWithTrace(ctx).With(zap.String("component", "widget")), errorCounter, op, msg, err, status, w)
}
