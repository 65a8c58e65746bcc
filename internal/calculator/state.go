package calculator

import (
	"errors"
	"fmt"
)

// Mode selects between plain arithmetic and currency conversion.
type Mode int

const (
	ModeClassic Mode = iota
	ModeCurrency
)

func (m Mode) String() string {
	if m == ModeCurrency {
		return "currency"
	}
	return "classic"
}

// ParseMode accepts "classic" or "currency". An empty string is classic.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "classic":
		return ModeClassic, nil
	case "currency":
		return ModeCurrency, nil
	}
	return ModeClassic, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Operator is a pending binary operation. The zero value means none.
type Operator string

const (
	OpNone      Operator = ""
	OpAdd       Operator = "+"
	OpSubtract  Operator = "-"
	OpMultiply  Operator = "*"
	OpDivide    Operator = "/"
	OpRemainder Operator = "%"
)

// ParseOperator maps keypad text to an Operator.
func ParseOperator(s string) (Operator, bool) {
	switch op := Operator(s); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpRemainder:
		return op, true
	}
	return OpNone, false
}

// State is the whole calculator. Transitions take a State by value and return
// the next one; the caller owns the only mutable copy.
//
// Operator is only ever set in ModeClassic. JustCompleted is true between a
// completed evaluation and the next edit.
type State struct {
	Current       string   `json:"current"`
	Previous      string   `json:"previous"`
	Operator      Operator `json:"operator,omitempty"`
	Mode          Mode     `json:"mode"`
	JustCompleted bool     `json:"just_completed"`

	// Currency pickers.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// Source is the amount behind the last completed conversion so that a
	// new target currency converts the original input, not the result.
	Source string `json:"source,omitempty"`
}

// NewState returns an empty classic-mode state with the given pickers.
func NewState(from, to string) State {
	return State{From: from, To: to}
}

// KeyKind identifies a keypad button.
type KeyKind int

const (
	KeyDigit KeyKind = iota
	KeyDecimal
	KeyOperator
	KeyEquals
	KeyClear
	KeyDelete
)

// Key is one parsed keypad press.
type Key struct {
	Kind  KeyKind
	Digit byte
	Op    Operator
}

func (k Key) String() string {
	switch k.Kind {
	case KeyDigit:
		return string(k.Digit)
	case KeyDecimal:
		return "."
	case KeyOperator:
		return string(k.Op)
	case KeyEquals:
		return "="
	case KeyClear:
		return "C"
	default:
		return "DEL"
	}
}

var ErrUnknownKey = errors.New("unknown key")

// ParseKey maps keypad text to a Key.
func ParseKey(s string) (Key, error) {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return Key{Kind: KeyDigit, Digit: s[0]}, nil
	}
	if op, ok := ParseOperator(s); ok {
		return Key{Kind: KeyOperator, Op: op}, nil
	}
	switch s {
	case ".":
		return Key{Kind: KeyDecimal}, nil
	case "=":
		return Key{Kind: KeyEquals}, nil
	case "C", "AC", "clear":
		return Key{Kind: KeyClear}, nil
	case "DEL", "delete":
		return Key{Kind: KeyDelete}, nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// EffectKind names a side effect requested by a transition.
type EffectKind int

const (
	// EffectRenderChart asks for the From/To history chart.
	EffectRenderChart EffectKind = iota
	// EffectSuggest asks for investment suggestions for Amount.
	EffectSuggest
	// EffectClearSuggestion drops any suggestion text.
	EffectClearSuggestion
	// EffectClearOutputs tears down the chart and the suggestion.
	EffectClearOutputs
)

func (k EffectKind) String() string {
	switch k {
	case EffectRenderChart:
		return "render_chart"
	case EffectSuggest:
		return "suggest"
	case EffectClearSuggestion:
		return "clear_suggestion"
	default:
		return "clear_outputs"
	}
}

func (k EffectKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Effect is a side effect the owner of the state is expected to carry out.
type Effect struct {
	Kind   EffectKind `json:"kind"`
	From   string     `json:"from,omitempty"`
	To     string     `json:"to,omitempty"`
	Amount float64    `json:"amount,omitempty"`
}
