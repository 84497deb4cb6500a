package harvest

// PrimaryLanguage picks the language with the largest share. Ties keep
// the earliest entry, so backend reporting order decides between equal
// shares. Returns false for an empty breakdown.
func PrimaryLanguage(shares []LanguageShare) (string, bool) {
	if len(shares) == 0 {
		return "", false
	}
	best := shares[0]
	for _, s := range shares[1:] {
		if s.Share > best.Share {
			best = s
		}
	}
	return best.Name, true
}
