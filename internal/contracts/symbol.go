package contracts

import "time"

// SymbolRecord is one row of the universe table
type SymbolRecord struct {
	Ticker      string                   `json:"ticker"`
	CompanyName string                   `json:"company_name,omitempty"`
	Price       float64                  `json:"price"`
	Metrics     map[Metric]OptionalFloat `json:"metrics"`
}

// Metric returns the value of metric m (absent when unknown)
func (r SymbolRecord) Metric(m Metric) OptionalFloat {
	return r.Metrics[m]
}

// Clone returns a deep copy of the record
func (r SymbolRecord) Clone() SymbolRecord {
	metrics := make(map[Metric]OptionalFloat, len(r.Metrics))
	for k, v := range r.Metrics {
		metrics[k] = v
	}
	r.Metrics = metrics
	return r
}

// Universe is the ordered, duplicate-free set of records for one run
// ⭐ SSOT: S0 → S2 종목 테이블 전달
type Universe struct {
	Date     time.Time         `json:"date"`
	Records  []SymbolRecord    `json:"records"`
	Excluded map[string]string `json:"excluded"` // ticker → 제외 사유
}

// NewUniverse builds a universe from already collected records
func NewUniverse(date time.Time, records []SymbolRecord, excluded map[string]string) *Universe {
	if excluded == nil {
		excluded = make(map[string]string)
	}
	return &Universe{
		Date:     date,
		Records:  records,
		Excluded: excluded,
	}
}

// Count returns the number of records
func (u *Universe) Count() int {
	return len(u.Records)
}

// Tickers returns the tickers in universe order
func (u *Universe) Tickers() []string {
	tickers := make([]string, len(u.Records))
	for i, r := range u.Records {
		tickers[i] = r.Ticker
	}
	return tickers
}

// Column returns metric m for every record, in universe order
func (u *Universe) Column(m Metric) []OptionalFloat {
	col := make([]OptionalFloat, len(u.Records))
	for i, r := range u.Records {
		col[i] = r.Metric(m)
	}
	return col
}

// Clone returns a deep copy so a stage can derive a new artifact
func (u *Universe) Clone() *Universe {
	records := make([]SymbolRecord, len(u.Records))
	for i, r := range u.Records {
		records[i] = r.Clone()
	}
	excluded := make(map[string]string, len(u.Excluded))
	for k, v := range u.Excluded {
		excluded[k] = v
	}
	return &Universe{Date: u.Date, Records: records, Excluded: excluded}
}
