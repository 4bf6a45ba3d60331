package backend

import "math"

// idf computes the BM25 inverse document frequency for a term appearing in
// n of total records.
func idf(n, total float64) float64 {
	return math.Log((total-n+0.5)/(n+0.5) + 1)
}

// bm25 computes one term's contribution to a record's score. tf is the term
// frequency in the record, dl the record's analyzed length, avgDl the
// collection average.
func bm25(termIDF, tf, dl, avgDl, k1, b float64) float64 {
	if avgDl == 0 {
		avgDl = 1
	}
	return termIDF * (tf * (k1 + 1)) / (tf + k1*(1-b+b*dl/avgDl))
}
