package model

import "time"

// Action is the live-serving recommendation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Trade is one simulated round trip, entered at the open and exited at
// the close of the bar following the signal.
type Trade struct {
	SignalTime  time.Time `json:"signal_time"`
	EntryTime   time.Time `json:"entry_time"`
	ExitTime    time.Time `json:"exit_time"`
	EntryPrice  float64   `json:"entry_price"`
	ExitPrice   float64   `json:"exit_price"`
	Return      float64   `json:"return"`
	Probability float64   `json:"probability"`
}

// LiveSignal is the serving-path output for the latest bar.
type LiveSignal struct {
	Symbol      string    `json:"symbol"`
	Time        time.Time `json:"time"`
	Action      Action    `json:"action"`
	Confidence  float64   `json:"confidence"`
	Probability float64   `json:"probability"`
	Available   bool      `json:"available"`
	Reason      string    `json:"reason,omitempty"` // set when Available is false
}
