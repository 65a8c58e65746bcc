package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"currency-crossover/internal/handlers"
	"currency-crossover/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the stateless calculator endpoints.
type Handler struct {
	engine Engine
}

func NewHandler(engine Engine) *Handler {
	return &Handler{engine: engine}
}

// Evaluate handles POST /calculator/evaluate. Operands that do not parse
// come back unchanged with applied=false; division by zero yields Infinity
// or NaN rather than an error.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, ok := ParseOperator(req.Operator)
	if !ok {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "unknown operator", fmt.Errorf("operator %q", req.Operator), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.operation", string(op)),
		attribute.String("calculator.operand.previous", req.Previous),
		attribute.String("calculator.operand.current", req.Current),
	)

	start := time.Now()
	next, _ := h.engine.Evaluate(State{Previous: req.Previous, Current: req.Current, Operator: op})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	applied := next.JustCompleted
	attrs := metric.WithAttributes(
		attribute.String("mode", ModeClassic.String()),
		attribute.Bool("applied", applied),
	)
	evalCounter.Add(ctx, 1, attrs)
	evalDuration.Record(ctx, elapsed, attrs)

	resp := EvaluateResponse{
		Operation: string(op),
		Previous:  req.Previous,
		Current:   req.Current,
		Result:    next.Current,
		Applied:   applied,
	}

	if applied {
		recordResult(ctx, next.Current)
		span.AddEvent("computation.complete", trace.WithAttributes(
			attribute.String("result", next.Current),
			attribute.Float64("duration_ms", elapsed),
		))
	} else {
		span.AddEvent("operands.unparsed")
	}
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator evaluation",
		zap.String("operation", string(op)),
		zap.String("previous", req.Previous),
		zap.String("current", req.Current),
		zap.String("result", resp.Result),
		zap.Bool("applied", applied),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Keys handles POST /calculator/keys: it replays a key sequence on a fresh
// state, with a child span per key, and reports the effects a live session
// would have fired without running them.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.keys",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return
	}

	mode, err := ParseMode(req.Mode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "invalid mode", err, http.StatusBadRequest, w)
		return
	}

	keys := make([]Key, 0, len(req.Keys))
	for _, text := range req.Keys {
		k, err := ParseKey(text)
		if err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "keys", err.Error(), err, http.StatusBadRequest, w)
			return
		}
		keys = append(keys, k)
	}

	span.SetAttributes(
		attribute.String("calculator.mode", mode.String()),
		attribute.Int("calculator.keys_count", len(keys)),
	)

	state := NewState(req.From, req.To)
	state.Mode = mode

	resp := KeysResponse{Steps: make([]KeyResult, 0, len(keys))}
	for i, k := range keys {
		_, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.keys.step.%d", i),
			trace.WithAttributes(
				attribute.Int("calculator.step.index", i),
				attribute.String("calculator.step.key", k.String()),
			),
		)

		start := time.Now()
		var (
			effects   []Effect
			evaluated bool
		)
		state, effects, evaluated = h.engine.Step(state, k)
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		keysCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode.String())))
		if evaluated {
			attrs := metric.WithAttributes(
				attribute.String("mode", mode.String()),
				attribute.Bool("applied", true),
			)
			evalCounter.Add(ctx, 1, attrs)
			evalDuration.Record(ctx, elapsed, attrs)
			recordResult(ctx, evaluatedValue(state))
		}

		display := Display(state)
		stepSpan.SetAttributes(attribute.String("calculator.step.display", display))
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		resp.Steps = append(resp.Steps, KeyResult{Key: k.String(), Display: display})
		resp.Effects = append(resp.Effects, effects...)
	}

	resp.Display = Display(state)
	resp.State = state

	span.AddEvent("keys.complete", trace.WithAttributes(
		attribute.String("display", resp.Display),
		attribute.Int("effects", len(resp.Effects)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("key sequence replayed",
		zap.String("mode", mode.String()),
		zap.Int("keys", len(keys)),
		zap.String("display", resp.Display),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// evaluatedValue is the result of the evaluation that just ran. A chained
// evaluation has already moved it into Previous.
func evaluatedValue(s State) string {
	if s.Operator != OpNone && s.Current == "" {
		return s.Previous
	}
	return s.Current
}

// recordResult feeds finite numeric results to the last-result gauge.
func recordResult(ctx context.Context, display string) {
	v, ok := parseOperand(display)
	if !ok || math.IsInf(v, 0) {
		return
	}
	resultGauge.Record(ctx, v)
}
