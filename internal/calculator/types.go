package calculator

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Operator string `json:"operator"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
// Applied is false when an operand did not parse and nothing changed.
type EvaluateResponse struct {
	Operation string `json:"operation"`
	Previous  string `json:"previous"`
	Current   string `json:"current"`
	Result    string `json:"result"`
	Applied   bool   `json:"applied"`
}

// KeysRequest is the JSON body for POST /calculator/keys.
type KeysRequest struct {
	Mode string   `json:"mode"` // "classic" (default) or "currency"
	From string   `json:"from"`
	To   string   `json:"to"`
	Keys []string `json:"keys"`
}

// KeysResponse is the JSON response for POST /calculator/keys.
type KeysResponse struct {
	Display string      `json:"display"`
	State   State       `json:"state"`
	Steps   []KeyResult `json:"steps"`
	Effects []Effect    `json:"effects,omitempty"`
}

// KeyResult records the display after one key.
type KeyResult struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}
