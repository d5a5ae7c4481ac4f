package yahoo

import "encoding/json"

// quoteResponse is the envelope of the v7 quote endpoint.
// Result entries stay raw so one malformed entry cannot spoil the batch.
type quoteResponse struct {
	QuoteResponse struct {
		Result []json.RawMessage `json:"result"`
		Error  *apiError         `json:"error"`
	} `json:"quoteResponse"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// quoteEntry holds the fields we read from one result.
type quoteEntry struct {
	Symbol             string          `json:"symbol"`
	RegularMarketPrice json.RawMessage `json:"regularMarketPrice"`
}

// chartResponse is the envelope of the v8 chart endpoint.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// lastPrice is the latest non-null close, or the market price from meta
// when the series is empty.
func (r chartResult) lastPrice() float64 {
	if len(r.Indicators.Quote) > 0 {
		closes := r.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil && *closes[i] > 0 {
				return *closes[i]
			}
		}
	}
	return r.Meta.RegularMarketPrice
}
