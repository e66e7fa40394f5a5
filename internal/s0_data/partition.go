package s0_data

// MaxBatchSize is the provider's batch-query ceiling (symbols per request)
const MaxBatchSize = 100

// Partition splits symbols into ordered chunks of at most size symbols.
// Concatenating the chunks reproduces the input exactly. size outside
// [1, MaxBatchSize] is clamped to MaxBatchSize.
func Partition(symbols []string, size int) [][]string {
	if size < 1 || size > MaxBatchSize {
		size = MaxBatchSize
	}

	chunks := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		// full slice expression: 청크에 append해도 원본이 오염되지 않음
		chunks = append(chunks, symbols[start:end:end])
	}
	return chunks
}
