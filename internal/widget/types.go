package widget

// KeysRequest is the JSON body for POST /sessions/{id}/keys. Key and Keys
// may both be set; Key goes first.
type KeysRequest struct {
	Key  string   `json:"key"`
	Keys []string `json:"keys"`
}

// ModeRequest is the JSON body for PUT /sessions/{id}/mode.
type ModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=classic currency"`
}

// CurrenciesRequest is the JSON body for PUT /sessions/{id}/currencies.
// At least one of From and To must be set.
type CurrenciesRequest struct {
	From string `json:"from" validate:"omitempty,len=3,alpha,uppercase"`
	To   string `json:"to" validate:"omitempty,len=3,alpha,uppercase"`
}
