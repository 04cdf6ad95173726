package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText_LabeledSections(t *testing.T) {
	text := "Summary: Q4 results were strong\n\nKey Points:\n1. Revenue up 20%\n2. Costs flat"

	got := ParseText(DefaultVocabulary(), text)

	assert.Equal(t, "Q4 results were strong", got.Summary)
	assert.Equal(t, []string{"Revenue up 20%", "Costs flat"}, got.KeyPoints)
	assert.Empty(t, got.Details)
	assert.Empty(t, got.Recommendations)
}

func TestParseText_AllSections(t *testing.T) {
	text := "Summary: The contract covers a two year engagement.\n\n" +
		"Key Points:\n- Fixed monthly fee\n- Quarterly reviews\n\n" +
		"Details:\nPayment terms are net 30. Either party may terminate\nwith 60 days notice.\n\n" +
		"Recommendations:\n1. Review the termination clause\n2. Confirm the fee schedule"

	got := ParseText(DefaultVocabulary(), text)

	assert.Equal(t, "The contract covers a two year engagement.", got.Summary)
	assert.Equal(t, []string{"Fixed monthly fee", "Quarterly reviews"}, got.KeyPoints)
	assert.Equal(t, "Payment terms are net 30. Either party may terminate\nwith 60 days notice.", got.Details)
	assert.Equal(t, []string{"Review the termination clause", "Confirm the fee schedule"}, got.Recommendations)
}

func TestParseText_IndonesianHeaders(t *testing.T) {
	text := "Ringkasan: Dokumen berisi laporan keuangan tahunan.\n\n" +
		"Poin Utama:\n1. Pendapatan naik\n2. Biaya stabil\n\n" +
		"Rekomendasi:\n- Tingkatkan investasi"

	got := ParseText(DefaultVocabulary(), text)

	assert.Equal(t, "Dokumen berisi laporan keuangan tahunan.", got.Summary)
	assert.Equal(t, []string{"Pendapatan naik", "Biaya stabil"}, got.KeyPoints)
	assert.Equal(t, []string{"Tingkatkan investasi"}, got.Recommendations)
}

func TestParseText_SynonymHeaders(t *testing.T) {
	text := "Main Themes:\n* Growth\n* Retention\n\nSuggested Actions:\n* Hire more support staff"

	got := ParseText(DefaultVocabulary(), text)

	assert.Equal(t, []string{"Growth", "Retention"}, got.KeyPoints)
	assert.Equal(t, []string{"Hire more support staff"}, got.Recommendations)
}

func TestParseText_NoHeadersFallsBackToFirstParagraph(t *testing.T) {
	text := "Just a plain answer without any structure.\n\nA second paragraph that should be ignored."

	got := ParseText(DefaultVocabulary(), text)

	assert.Equal(t, "Just a plain answer without any structure.", got.Summary)
	assert.Empty(t, got.KeyPoints)
	assert.Empty(t, got.Details)
	assert.Empty(t, got.Recommendations)
}

func TestParseText_NumberedLinesFallback(t *testing.T) {
	// tanpa header Key Points, baris bernomor tetap dipungut
	text := "The document highlights:\n1. Strong cash position\n2. New market entry"

	got := ParseText(DefaultVocabulary(), text)

	assert.Equal(t, []string{"Strong cash position", "New market entry"}, got.KeyPoints)
}

func TestParseText_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n"} {
		got := ParseText(DefaultVocabulary(), text)
		assert.Empty(t, got.Summary)
		require.NotNil(t, got.KeyPoints)
		require.NotNil(t, got.Recommendations)
		assert.Empty(t, got.KeyPoints)
		assert.Empty(t, got.Recommendations)
	}
}

func TestParseText_Deterministic(t *testing.T) {
	text := "Summary: stable output\n\nKey Points:\n1. One\n2. Two"

	first := ParseText(DefaultVocabulary(), text)
	second := ParseText(DefaultVocabulary(), text)

	assert.Equal(t, first, second)
}

func TestParseWith_SkipsNonTextBlocks(t *testing.T) {
	blocks := []ContentBlock{
		{Type: BlockOther, Text: "Summary: should not be read"},
		{Type: BlockText, Text: "Summary: read from the text block"},
	}

	got := ParseWith(DefaultVocabulary(), blocks)

	assert.Equal(t, "read from the text block", got.Summary)
}

func TestParseWith_JoinsTextBlocks(t *testing.T) {
	blocks := []ContentBlock{
		{Type: BlockText, Text: "Summary: spread across blocks"},
		{Type: BlockText, Text: "Key Points:\n1. Carried over"},
	}

	got := ParseWith(DefaultVocabulary(), blocks)

	assert.Equal(t, "spread across blocks", got.Summary)
	assert.Equal(t, []string{"Carried over"}, got.KeyPoints)
}

func TestParse_EmptyBlocks(t *testing.T) {
	got := Parse(nil)

	assert.Empty(t, got.Summary)
	assert.Empty(t, got.KeyPoints)
}
