package analysis

// Vocabulary maps each parsed field to the section-header synonyms the
// parser recognizes. Header vocabularies are configuration, not code:
// callers may pass their own table to ParseWith.
type Vocabulary struct {
	Summary         []string
	KeyPoints       []string
	Details         []string
	Recommendations []string
}

// DefaultVocabulary covers English and Indonesian headers.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Summary:         []string{"Summary", "Ringkasan"},
		KeyPoints:       []string{"Key Points", "Main Themes", "Poin Utama", "Tema Utama"},
		Details:         []string{"Details", "Additional Information", "Detail", "Informasi Tambahan"},
		Recommendations: []string{"Recommendations", "Suggested Actions", "Rekomendasi", "Saran Tindakan"},
	}
}

// all returns every known header synonym, used as section terminators.
func (v Vocabulary) all() []string {
	out := make([]string, 0, len(v.Summary)+len(v.KeyPoints)+len(v.Details)+len(v.Recommendations))
	out = append(out, v.Summary...)
	out = append(out, v.KeyPoints...)
	out = append(out, v.Details...)
	out = append(out, v.Recommendations...)
	return out
}
