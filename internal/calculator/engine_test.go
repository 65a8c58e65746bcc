package calculator

import (
	"math"
	"strconv"
	"testing"
)

type rateMap map[string]float64

func (m rateMap) Rate(code string) (float64, bool) {
	r, ok := m[code]
	return r, ok
}

var testRates = rateMap{"USD": 1, "INR": 83, "EUR": 0.92}

func testEngine() Engine {
	return Engine{Rates: testRates, HomeCurrency: "INR"}
}

// press replays keys and collects every effect.
func press(t *testing.T, e Engine, s State, keys ...string) (State, []Effect) {
	t.Helper()
	var all []Effect
	for _, text := range keys {
		k, err := ParseKey(text)
		if err != nil {
			t.Fatalf("parsing key %q: %v", text, err)
		}
		var effects []Effect
		s, effects = e.Apply(s, k)
		all = append(all, effects...)
	}
	return s, all
}

func TestClassicSequences(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "addition", keys: []string{"1", "0", "0", "+", "5", "0", "="}, want: "150"},
		{name: "remainder", keys: []string{"9", "%", "2", "="}, want: "1"},
		{name: "chained left to right", keys: []string{"7", "+", "3", "*", "2", "="}, want: "20"},
		{name: "subtract negative result", keys: []string{"3", "-", "8", "="}, want: "-5"},
		{name: "float arithmetic", keys: []string{".", "1", "+", ".", "2", "="}, want: "0.30000000000000004"},
		{name: "divide by zero", keys: []string{"5", "/", "0", "="}, want: "Infinity"},
		{name: "zero by zero", keys: []string{"0", "/", "0", "="}, want: "NaN"},
		{name: "negative remainder", keys: []string{"7", "-", "9", "=", "%", "3", "="}, want: "-2"},
		{name: "operator after result chains", keys: []string{"2", "*", "3", "=", "+", "4", "="}, want: "10"},
		{name: "equals twice is idempotent", keys: []string{"2", "+", "3", "=", "="}, want: "5"},
		{name: "leading zero collapses", keys: []string{"0", "0", "7"}, want: "7"},
		{name: "single decimal point", keys: []string{"1", ".", ".", "5"}, want: "1.5"},
		{name: "operator without operand", keys: []string{"+", "4"}, want: "4"},
		{name: "equals without operator", keys: []string{"4", "="}, want: "4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, effects := press(t, testEngine(), State{}, tc.keys...)
			if got := Display(s); got != tc.want {
				t.Fatalf("keys %v: expected display %q, got %q", tc.keys, tc.want, got)
			}
			if len(effects) != 0 {
				t.Fatalf("expected no effects in classic mode, got %#v", effects)
			}
		})
	}
}

func TestChainedEvaluationMatchesLeftToRight(t *testing.T) {
	ops := []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide, OpRemainder}
	operands := []float64{7, 3, 2.5}

	for _, op1 := range ops {
		for _, op2 := range ops {
			keys := []string{"7", string(op1), "3", string(op2), "2", ".", "5", "="}
			s, _ := press(t, testEngine(), State{}, keys...)

			first, _ := Compute(operands[0], operands[1], op1)
			want, _ := Compute(first, operands[2], op2)

			if got := Display(s); got != FormatNumber(want) {
				t.Fatalf("7 %s 3 %s 2.5: expected %q, got %q", op1, op2, FormatNumber(want), got)
			}
		}
	}
}

func TestDigitAfterCompletionStartsFreshOperand(t *testing.T) {
	s, _ := press(t, testEngine(), State{}, "1", "+", "1", "=")
	if !s.JustCompleted {
		t.Fatal("expected JustCompleted after evaluation")
	}

	s, _ = press(t, testEngine(), s, "9")
	if got := Display(s); got != "9" {
		t.Fatalf("expected fresh operand %q, got %q", "9", got)
	}
	if s.JustCompleted {
		t.Fatal("expected JustCompleted to clear on digit")
	}

	s, _ = press(t, testEngine(), State{}, "1", "+", "1", "=", ".")
	if got := Display(s); got != "0." {
		t.Fatalf("expected %q after decimal, got %q", "0.", got)
	}
}

func TestDeleteOnEmptyOperand(t *testing.T) {
	s := testEngine().PressDelete(State{})
	if s.Current != "" {
		t.Fatalf("expected empty operand, got %q", s.Current)
	}

	s, _ = press(t, testEngine(), State{}, "1", "2", "DEL")
	if s.Current != "1" {
		t.Fatalf("expected %q, got %q", "1", s.Current)
	}

	s, _ = press(t, testEngine(), State{}, "1", "+", "1", "=", "DEL")
	if s.JustCompleted {
		t.Fatal("expected delete to clear JustCompleted")
	}
}

func TestClearAlwaysResetsDisplay(t *testing.T) {
	starts := [][]string{
		{},
		{"1", "2"},
		{"1", "+", "2"},
		{"5", "/", "0", "="},
		{"3", "."},
	}

	for _, keys := range starts {
		s, _ := press(t, testEngine(), State{}, keys...)
		s, effects := press(t, testEngine(), s, "C")

		if got := Display(s); got != "0" {
			t.Fatalf("after %v then clear: expected %q, got %q", keys, "0", got)
		}
		if s.Previous != "" || s.Operator != OpNone || s.JustCompleted {
			t.Fatalf("after %v then clear: expected initial state, got %#v", keys, s)
		}
		if len(effects) != 1 || effects[0].Kind != EffectClearOutputs {
			t.Fatalf("expected a clear-outputs effect, got %#v", effects)
		}
	}
}

func TestUnparsableOperandsLeaveStateUnchanged(t *testing.T) {
	in := State{Previous: ".", Current: "3", Operator: OpAdd}

	out, _ := testEngine().Evaluate(in)

	if out != in {
		t.Fatalf("expected state unchanged, got %#v", out)
	}
}

func currencyState(from, to string) State {
	s := NewState(from, to)
	s.Mode = ModeCurrency
	return s
}

func TestCurrencyConversion(t *testing.T) {
	s, effects := press(t, testEngine(), currencyState("USD", "INR"), "1", "=")

	if got := Display(s); got != "83.00 INR" {
		t.Fatalf("expected display %q, got %q", "83.00 INR", got)
	}
	if !s.JustCompleted {
		t.Fatal("expected JustCompleted after conversion")
	}
	if len(effects) != 2 {
		t.Fatalf("expected 2 effects, got %#v", effects)
	}
	if effects[0] != (Effect{Kind: EffectRenderChart, From: "USD", To: "INR"}) {
		t.Fatalf("expected chart effect for USD/INR, got %#v", effects[0])
	}
	if effects[1].Kind != EffectSuggest || effects[1].Amount != 83 {
		t.Fatalf("expected suggest effect for 83, got %#v", effects[1])
	}
}

func TestCurrencyConversionFormula(t *testing.T) {
	tests := []struct {
		amount   string
		from, to string
	}{
		{amount: "250", from: "EUR", to: "INR"},
		{amount: "12.34", from: "INR", to: "EUR"},
		{amount: "1", from: "EUR", to: "USD"},
	}

	for _, tc := range tests {
		t.Run(tc.from+tc.to, func(t *testing.T) {
			s := currencyState(tc.from, tc.to)
			s.Current = tc.amount

			out, effects := testEngine().Evaluate(s)

			amount, _ := strconv.ParseFloat(tc.amount, 64)
			want := FormatFixed2(amount / testRates[tc.from] * testRates[tc.to])
			if out.Current != want {
				t.Fatalf("expected %q, got %q", want, out.Current)
			}
			if out.Source != tc.amount {
				t.Fatalf("expected source %q, got %q", tc.amount, out.Source)
			}
			if tc.to != "INR" && effects[1].Kind != EffectClearSuggestion {
				t.Fatalf("expected clear-suggestion effect, got %#v", effects[1])
			}
		})
	}
}

func TestCurrencyIdentity(t *testing.T) {
	for _, amount := range []string{"1", "42.5", "1000000", "0.01"} {
		s := currencyState("EUR", "EUR")
		s.Current = amount

		out, _ := testEngine().Evaluate(s)

		want, _ := strconv.ParseFloat(amount, 64)
		got, err := strconv.ParseFloat(out.Current, 64)
		if err != nil {
			t.Fatalf("parsing %q: %v", out.Current, err)
		}
		if math.Abs(got-want) > 0.005 {
			t.Fatalf("EUR→EUR %s: got %s", amount, out.Current)
		}
	}
}

func TestCurrencyConversionNoOps(t *testing.T) {
	tests := []struct {
		name  string
		state State
		e     Engine
	}{
		{name: "missing from", state: State{Mode: ModeCurrency, To: "INR", Current: "5"}, e: testEngine()},
		{name: "unknown code", state: State{Mode: ModeCurrency, From: "XYZ", To: "INR", Current: "5"}, e: testEngine()},
		{name: "empty amount", state: State{Mode: ModeCurrency, From: "USD", To: "INR"}, e: testEngine()},
		{name: "no rates", state: State{Mode: ModeCurrency, From: "USD", To: "INR", Current: "5"}, e: Engine{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, effects := tc.e.Evaluate(tc.state)
			if out != tc.state {
				t.Fatalf("expected state unchanged, got %#v", out)
			}
			if len(effects) != 0 {
				t.Fatalf("expected no effects, got %#v", effects)
			}
		})
	}
}

func TestOperatorIgnoredInCurrencyMode(t *testing.T) {
	s, _ := press(t, testEngine(), currencyState("USD", "INR"), "5", "+", "3")

	if s.Operator != OpNone || s.Previous != "" {
		t.Fatalf("expected no pending operator in currency mode, got %#v", s)
	}
	if got := Display(s); got != "53 USD" {
		t.Fatalf("expected %q, got %q", "53 USD", got)
	}
}

func TestSetModeClears(t *testing.T) {
	s, _ := press(t, testEngine(), NewState("USD", "INR"), "1", "+", "2")

	s, effects := testEngine().SetMode(s, true)

	if s.Mode != ModeCurrency || s.Operator != OpNone || s.Current != "" || s.Previous != "" {
		t.Fatalf("expected cleared currency state, got %#v", s)
	}
	if s.From != "USD" || s.To != "INR" {
		t.Fatalf("expected pickers kept, got %q/%q", s.From, s.To)
	}
	if len(effects) != 1 || effects[0].Kind != EffectClearOutputs {
		t.Fatalf("expected clear-outputs effect, got %#v", effects)
	}
	if got := Display(s); got != "0 USD" {
		t.Fatalf("expected %q, got %q", "0 USD", got)
	}
}

func TestSelectToReconvertsSourceAmount(t *testing.T) {
	e := testEngine()
	s, _ := press(t, e, currencyState("USD", "INR"), "2", "=")

	s, effects := e.SelectTo(s, "EUR")

	if got := Display(s); got != "1.84 EUR" {
		t.Fatalf("expected %q, got %q", "1.84 EUR", got)
	}
	if len(effects) != 2 || effects[0].To != "EUR" || effects[1].Kind != EffectClearSuggestion {
		t.Fatalf("unexpected effects %#v", effects)
	}

	s = e.SelectFrom(s, "EUR")
	if s.From != "EUR" {
		t.Fatalf("expected from EUR, got %q", s.From)
	}
}

func TestSelectToBeforeConversionOnlyChangesPicker(t *testing.T) {
	s, _ := press(t, testEngine(), currencyState("USD", "INR"), "2")

	s, effects := testEngine().SelectTo(s, "EUR")

	if s.To != "EUR" || s.Current != "2" || len(effects) != 0 {
		t.Fatalf("unexpected state %#v effects %#v", s, effects)
	}
}

func TestParseKey(t *testing.T) {
	valid := map[string]Key{
		"7":      {Kind: KeyDigit, Digit: '7'},
		".":      {Kind: KeyDecimal},
		"%":      {Kind: KeyOperator, Op: OpRemainder},
		"=":      {Kind: KeyEquals},
		"C":      {Kind: KeyClear},
		"delete": {Kind: KeyDelete},
	}
	for text, want := range valid {
		got, err := ParseKey(text)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", text, err)
		}
		if got != want {
			t.Fatalf("ParseKey(%q): expected %#v, got %#v", text, want, got)
		}
	}

	for _, text := range []string{"", "12", "x", "^"} {
		if _, err := ParseKey(text); err == nil {
			t.Fatalf("ParseKey(%q): expected error", text)
		}
	}
}

func TestStepReportsEvaluations(t *testing.T) {
	keys := []string{"7", "+", "3", "*", "2", "=", "=", "+"}
	want := []bool{false, false, false, true, false, true, false, false}

	e := testEngine()
	s := State{}
	for i, text := range keys {
		k, err := ParseKey(text)
		if err != nil {
			t.Fatalf("parsing key %q: %v", text, err)
		}
		var evaluated bool
		s, _, evaluated = e.Step(s, k)
		if evaluated != want[i] {
			t.Fatalf("key %d (%q): expected evaluated=%v, got %v", i, text, want[i], evaluated)
		}
	}

	_, _, evaluated := e.Step(State{Previous: ".", Current: "3", Operator: OpAdd}, Key{Kind: KeyEquals})
	if evaluated {
		t.Fatal("expected an unparsable operand not to count as an evaluation")
	}

	_, _, evaluated = e.Step(State{Mode: ModeCurrency, From: "USD", To: "INR", Current: "2"}, Key{Kind: KeyEquals})
	if !evaluated {
		t.Fatal("expected a conversion to count as an evaluation")
	}
}

func TestOperandBeyondFloatRangeEvaluatesToInfinity(t *testing.T) {
	keys := []string{"1"}
	for range 310 {
		keys = append(keys, "0")
	}
	keys = append(keys, "+", "1", "=")

	s, _ := press(t, testEngine(), State{}, keys...)

	if got := Display(s); got != "Infinity" {
		t.Fatalf("expected %q, got %q", "Infinity", got)
	}
	if !s.JustCompleted {
		t.Fatal("expected the evaluation to complete")
	}
}
