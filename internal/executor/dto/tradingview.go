package dto

// TradingViewScanRequest is the screener scan body. Columns are read positionally.
type TradingViewScanRequest struct {
	Filter  []TradingViewFilter `json:"filter"`
	Columns []string            `json:"columns"`
	Sort    TradingViewSort     `json:"sort"`
	Range   []int               `json:"range"`
	Markets []string            `json:"markets"`
}

type TradingViewFilter struct {
	Left      string      `json:"left"`
	Operation string      `json:"operation"`
	Right     interface{} `json:"right"`
}

type TradingViewSort struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

type TradingViewResponse struct {
	TotalCount int                       `json:"totalCount"`
	Data       []TradingViewDataResponse `json:"data"`
}

type TradingViewDataResponse struct {
	// "HOSE:FPT"; d holds the requested columns, Recommend.All first
	StockCode string    `json:"s"`
	Columns   []float64 `json:"d"`
}
