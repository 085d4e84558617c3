package redact

import "math"

// ShannonEntropy computes the Shannon entropy of s in bits per character.
// Random base64-ish material sits around 4.5-5.5; English prose around 4.0;
// identifiers and repeated characters well below that.
func ShannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
