package models

// Requests for decision HTTP endpoints. Defined in domain for consistency and reuse.

type DecisionRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"250" validate:"gte=1,lte=2000"`
	Fresh  bool   `query:"fresh" json:"fresh"` // bypass the decision cache
}

type RegimeRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"250" validate:"gte=1,lte=2000"`
}
