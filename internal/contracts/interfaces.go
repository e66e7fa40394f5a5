package contracts

import "context"

// Fetcher retrieves raw market data for one batch of symbols.
// 호출자가 배치 분할(최대 100)과 인증을 책임짐
type Fetcher interface {
	Fetch(ctx context.Context, symbols []string, endpoints []Endpoint) (BatchResponse, error)
}
