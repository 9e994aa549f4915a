package entities

// SpendingPoint is one period of a drug's historical spend series.
// Period is a label, typically a calendar year. Series are kept in
// ascending period order.
type SpendingPoint struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}
