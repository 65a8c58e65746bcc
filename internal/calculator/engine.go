package calculator

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RateLookup resolves a currency code to its rate against the base currency.
type RateLookup interface {
	Rate(code string) (float64, bool)
}

// Engine runs the keypad transitions. It holds no state of its own; Rates is
// only consulted in currency mode.
type Engine struct {
	Rates        RateLookup
	HomeCurrency string
}

// Apply dispatches one key press.
func (e Engine) Apply(s State, k Key) (State, []Effect) {
	next, effects, _ := e.Step(s, k)
	return next, effects
}

// Step is Apply that also reports whether the key completed an evaluation,
// either on equals or by chaining a pending operation on an operator.
func (e Engine) Step(s State, k Key) (State, []Effect, bool) {
	switch k.Kind {
	case KeyDigit:
		return e.PressDigit(s, k.Digit), nil, false
	case KeyDecimal:
		return e.PressDecimal(s), nil, false
	case KeyOperator:
		return e.pressOperator(s, k.Op)
	case KeyEquals:
		return e.pressEquals(s)
	case KeyClear:
		next, effects := e.PressClear(s)
		return next, effects, false
	case KeyDelete:
		return e.PressDelete(s), nil, false
	}
	return s, nil, false
}

func (e Engine) PressDigit(s State, d byte) State {
	if s.JustCompleted {
		s.Current = ""
		s.JustCompleted = false
	}
	if s.Current == "0" {
		s.Current = ""
	}
	s.Current += string(d)
	return s
}

func (e Engine) PressDecimal(s State) State {
	if s.JustCompleted {
		s.Current = ""
		s.JustCompleted = false
	}
	if strings.Contains(s.Current, ".") {
		return s
	}
	if s.Current == "" {
		s.Current = "0"
	}
	s.Current += "."
	return s
}

// PressOperator stores op, chaining any pending operation first. It is a
// no-op in currency mode or while the current operand is empty.
func (e Engine) PressOperator(s State, op Operator) (State, []Effect) {
	next, effects, _ := e.pressOperator(s, op)
	return next, effects
}

func (e Engine) pressOperator(s State, op Operator) (State, []Effect, bool) {
	if s.Mode == ModeCurrency || s.Current == "" {
		return s, nil, false
	}

	var (
		effects   []Effect
		evaluated bool
	)
	if s.Previous != "" {
		s, effects, evaluated = e.evaluate(s)
	}

	s.JustCompleted = false
	s.Operator = op
	s.Previous = s.Current
	s.Current = ""
	return s, effects, evaluated
}

func (e Engine) PressDelete(s State) State {
	if n := len(s.Current); n > 0 {
		s.Current = s.Current[:n-1]
	}
	s.JustCompleted = false
	return s
}

// PressClear resets the operands and asks for the chart and suggestion to be
// torn down. Mode and pickers survive.
func (e Engine) PressClear(s State) (State, []Effect) {
	return State{Mode: s.Mode, From: s.From, To: s.To}, []Effect{{Kind: EffectClearOutputs}}
}

func (e Engine) PressEquals(s State) (State, []Effect) {
	next, effects, _ := e.pressEquals(s)
	return next, effects
}

func (e Engine) pressEquals(s State) (State, []Effect, bool) {
	if s.JustCompleted {
		return s, nil, false
	}
	return e.evaluate(s)
}

// SetMode switches modes and clears everything.
func (e Engine) SetMode(s State, currency bool) (State, []Effect) {
	if currency {
		s.Mode = ModeCurrency
	} else {
		s.Mode = ModeClassic
	}
	return e.PressClear(s)
}

func (e Engine) SelectFrom(s State, code string) State {
	s.From = code
	return s
}

// SelectTo changes the target currency. After a completed conversion the
// source amount is converted again into the new target.
func (e Engine) SelectTo(s State, code string) (State, []Effect) {
	s.To = code
	if s.Mode != ModeCurrency || !s.JustCompleted || s.Source == "" {
		return s, nil
	}
	s.Current = s.Source
	return e.Evaluate(s)
}

// Evaluate runs the pending computation. Inputs that do not parse leave the
// state untouched.
func (e Engine) Evaluate(s State) (State, []Effect) {
	next, effects, _ := e.evaluate(s)
	return next, effects
}

// evaluate reports false when nothing was computed.
func (e Engine) evaluate(s State) (State, []Effect, bool) {
	if s.Mode == ModeCurrency {
		return e.convert(s)
	}

	prev, ok := parseOperand(s.Previous)
	if !ok {
		return s, nil, false
	}
	cur, ok := parseOperand(s.Current)
	if !ok {
		return s, nil, false
	}
	result, ok := Compute(prev, cur, s.Operator)
	if !ok {
		return s, nil, false
	}

	s.Current = FormatNumber(result)
	s.Previous = ""
	s.Operator = OpNone
	s.JustCompleted = true
	return s, nil, true
}

func (e Engine) convert(s State) (State, []Effect, bool) {
	amount, ok := parseOperand(s.Current)
	if !ok || s.From == "" || s.To == "" || e.Rates == nil {
		return s, nil, false
	}
	fromRate, ok := e.Rates.Rate(s.From)
	if !ok {
		return s, nil, false
	}
	toRate, ok := e.Rates.Rate(s.To)
	if !ok {
		return s, nil, false
	}

	result := Convert(amount, fromRate, toRate)

	s.Source = s.Current
	s.Current = FormatFixed2(result)
	s.Previous = ""
	s.Operator = OpNone
	s.JustCompleted = true

	effects := []Effect{{Kind: EffectRenderChart, From: s.From, To: s.To}}
	if e.HomeCurrency != "" && s.To == e.HomeCurrency {
		effects = append(effects, Effect{Kind: EffectSuggest, From: s.From, To: s.To, Amount: result})
	} else {
		effects = append(effects, Effect{Kind: EffectClearSuggestion})
	}
	return s, effects, true
}

// Compute applies op to a and b with plain float64 semantics; division by
// zero yields Inf or NaN. ok is false when op is not an operator.
func Compute(a, b float64, op Operator) (float64, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSubtract:
		return a - b, true
	case OpMultiply:
		return a * b, true
	case OpDivide:
		return a / b, true
	case OpRemainder:
		return math.Mod(a, b), true
	}
	return 0, false
}

// Convert routes amount through the base currency.
func Convert(amount, fromRate, toRate float64) float64 {
	return (amount / fromRate) * toRate
}

// FormatFixed2 renders v with exactly two decimals, rounding the exact
// binary value half away from zero: 1.005 is stored below 1.005 and shows
// 1.00. Magnitudes of 1e21 and up keep the exponent form.
func FormatFixed2(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) || math.Abs(v) >= 1e21 {
		return FormatNumber(v)
	}
	return decimal.NewFromFloatWithExponent(v, -2).StringFixed(2)
}

// Display is what the numeric display shows for s.
func Display(s State) string {
	value := s.Current
	if value == "" {
		value = "0"
	}
	if s.Mode != ModeCurrency {
		return value
	}
	code := s.From
	if s.JustCompleted {
		code = s.To
	}
	return value + " " + code
}
