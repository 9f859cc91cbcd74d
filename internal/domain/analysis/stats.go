package analysis

// Aggregate computes history statistics over records.
//
// AvgCompressionRatio is the mean of summary/original per record, the inverse of
// Result.CompressionRatio. CompressionDisplay carries the original:summary figure
// shown next to the per-analysis ratio.
func Aggregate(records []*Record) Stats {
	st := Stats{TotalAnalyses: len(records)}
	if len(records) == 0 {
		return st
	}

	var timeSum, ratioSum float64
	ratioN := 0
	for _, r := range records {
		timeSum += r.ProcessingTime
		// zero-length originals would divide by zero; they carry no ratio
		if r.OriginalLength > 0 {
			ratioSum += float64(CharCount(r.Summary)) / float64(r.OriginalLength)
			ratioN++
		}
	}

	avgTime := timeSum / float64(len(records))
	st.AvgProcessingTime = &avgTime

	if ratioN > 0 {
		avgRatio := ratioSum / float64(ratioN)
		st.AvgCompressionRatio = &avgRatio
		if avgRatio > 0 {
			display := 1 / avgRatio
			st.CompressionDisplay = &display
		}
	}
	return st
}
