package harvest

// Partition splits titles into consecutive chunks of size batchSize,
// preserving order; the last chunk may be shorter. Concatenating the chunks
// reproduces the input exactly. A nonpositive batchSize yields a single chunk.
func Partition(titles []string, batchSize int) [][]string {
	if len(titles) == 0 {
		return nil
	}
	if batchSize <= 0 {
		return [][]string{titles}
	}
	chunks := make([][]string, 0, (len(titles)+batchSize-1)/batchSize)
	for start := 0; start < len(titles); start += batchSize {
		end := start + batchSize
		if end > len(titles) {
			end = len(titles)
		}
		chunks = append(chunks, titles[start:end])
	}
	return chunks
}
