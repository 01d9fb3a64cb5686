package synth

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/studybot/models"
	"github.com/stretchr/testify/require"
)

const sampleText = `Osmosis is the movement of water across a membrane. Diffusion refers to the spreading of particles.

Photosynthesis converts sunlight into chemical energy inside chloroplasts. Mitochondria produce energy for the cell through respiration. The Cell Membrane controls what enters and leaves the cell.

Enzymes speed up chemical reactions without being consumed. Proteins are built from chains of amino acids. Ribosomes assemble proteins using instructions from messenger molecules.`

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestFallback(seed int64) *Fallback {
	return NewFallback(FallbackOptions{
		Rand:  rand.New(rand.NewSource(seed)),
		NewID: SequentialIDs("card"),
		Now:   func() time.Time { return fixedNow },
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello © world", "Hello world"},
		{"  a\n\nb  ", "a b"},
		{"Price: $5 (approx)", "Price: 5 approx"},
		{"It's well-known; right?", "It's well-known; right?"},
		{"naïve café", "nave caf"},
		{"", ""},
	}
	for _, tt := range tests {
		got := Sanitize(tt.in)
		require.Equal(t, tt.want, got, "Sanitize(%q)", tt.in)
		require.Equal(t, got, Sanitize(got), "Sanitize is not idempotent for %q", tt.in)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		sampleText,
		"a ( b ) c",
		"x   y",
		"tabs\t\tand\r\nnewlines",
		"«quoted» — dashed … text",
		"  ©©  ",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		require.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("Short. This is a longer sentence! And another one here? ok")
	require.Equal(t, []string{"This is a longer sentence", "And another one here"}, got)

	var b strings.Builder
	for i := 0; i < 150; i++ {
		b.WriteString("This sentence is long enough. ")
	}
	require.Len(t, Sentences(b.String()), 100)
}

func TestParagraphs(t *testing.T) {
	raw := "First paragraph with enough text.\n\nshort\n\n\nThird paragraph with © enough text."
	require.Equal(t, []string{
		"First paragraph with enough text.",
		"Third paragraph with enough text.",
	}, Paragraphs(raw))
}

func TestTopicSentences(t *testing.T) {
	short := strings.Repeat("x", 29)
	edgeLow := strings.Repeat("x", 30)
	edgeHigh := strings.Repeat("x", 300)
	long := strings.Repeat("x", 301)
	require.Equal(t, []string{edgeLow, edgeHigh}, TopicSentences([]string{short, edgeLow, edgeHigh, long}))
}

func TestExtractDefinitions_Scenario(t *testing.T) {
	text := "Osmosis is the movement of water across a membrane. Diffusion refers to the spreading of particles."
	defs := ExtractDefinitions(Sentences(Sanitize(text)))

	require.Len(t, defs, 2)
	require.Equal(t, "Osmosis", defs[0].Term)
	require.Equal(t, "the movement of water across a membrane", defs[0].Definition)
	require.Equal(t, "Diffusion", defs[1].Term)
	require.Equal(t, "the spreading of particles", defs[1].Definition)
}

func TestDefinitionPatterns(t *testing.T) {
	tests := []struct {
		pattern  string
		sentence string
		term     string
		def      string
	}{
		{"is", "osmosis is the movement of water across a membrane", "Osmosis", "the movement of water across a membrane"},
		{"refers-to", "Diffusion refers to the spreading of particles", "Diffusion", "the spreading of particles"},
		{"refers-to", "Entropy REFER TO a measure of disorder in systems", "Entropy", "a measure of disorder in systems"},
		{"colon", "Photosynthesis: the process plants use to make food", "Photosynthesis", "the process plants use to make food"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			defs := ExtractDefinitions([]string{tt.sentence})
			require.NotEmpty(t, defs)
			require.Equal(t, tt.pattern, defs[0].Pattern)
			require.Equal(t, tt.term, defs[0].Term)
			require.Equal(t, tt.def, defs[0].Definition)
		})
	}
}

func TestExtractDefinitions_Rules(t *testing.T) {
	require.Empty(t, ExtractDefinitions([]string{"It is a thing that is big"}), "term shorter than 3")
	require.Empty(t, ExtractDefinitions([]string{"Water is wet stuff"}), "definition of 10 or fewer")
	require.Empty(t, ExtractDefinitions([]string{strings.Repeat("a", 50) + " is a very long winded term here"}), "term of 50")

	defs := ExtractDefinitions([]string{
		"Osmosis is the movement of water molecules",
		"osmosis is something else entirely different",
		"OSMOSIS refers to yet another explanation here",
	})
	require.Len(t, defs, 1)
	require.Equal(t, "the movement of water molecules", defs[0].Definition)
}

func TestExtractDefinitions_NoCaseDuplicates(t *testing.T) {
	defs := ExtractDefinitions(Sentences(Sanitize(sampleText + " osmosis is a repeated definition of osmosis. MITOCHONDRIA: organelles that produce energy")))
	seen := map[string]bool{}
	for _, d := range defs {
		key := strings.ToLower(d.Term)
		require.False(t, seen[key], "duplicate term %q", d.Term)
		seen[key] = true
	}
}

func TestExtractConcepts(t *testing.T) {
	got := ExtractConcepts("Osmosis moves Water across membranes. The nucleus is small. Photosynthesis Process happens in Leaves and Osmosis again")
	require.Equal(t, []string{"Osmosis", "Water", "Photosynthesis Process", "Leaves"}, got)

	words := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel", "India", "Juliet",
		"Kilo", "Lima", "Mike", "November", "Oscar", "Papa", "Quebec", "Romeo", "Sierra", "Tango", "Uniform", "Victor"}
	got = ExtractConcepts(strings.Join(words, " and "))
	require.Len(t, got, 20)
	require.Equal(t, "Alpha", got[0])
	require.Equal(t, "Tango", got[19])
}

func TestConceptAnswer(t *testing.T) {
	sentences := []string{"Cells divide often", "The nucleus holds osmosis data"}
	require.Equal(t, "The nucleus holds osmosis data.", conceptAnswer(sentences, "Osmosis"))
	require.Equal(t, "Ribosome is an important concept in this material.", conceptAnswer(sentences, "Ribosome"))
}

func TestFillInTheBlanks(t *testing.T) {
	blanks := FillInTheBlanks([]string{"Plants convert sunlight into chemical energy daily. Too few words here."})
	require.Len(t, blanks, 1)
	require.Equal(t, "Fill in the blank: Plants ______ sunlight into chemical energy daily", blanks[0].Question)
	require.Equal(t, "convert", blanks[0].Answer)

	// Only the first and last words qualify, so nothing is blanked.
	require.Empty(t, FillInTheBlanks([]string{"Longword a b c d Lastword"}))

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("Students should review material before every exam. ")
	}
	require.Len(t, FillInTheBlanks([]string{b.String()}), 15)
}

func TestFallback_Summary(t *testing.T) {
	text := "The first topic sentence has plenty of words in it. " +
		"The second topic sentence also has plenty of words. " +
		"The third topic sentence is long enough as well. " +
		"The fourth topic sentence rounds out this paragraph."
	m := newTestFallback(1).Generate(text, "Topics")

	require.Len(t, m.Summary, 3)
	require.Len(t, m.Summary[models.DetailBrief].KeyPoints, 2)
	require.Len(t, m.Summary[models.DetailStandard].KeyPoints, 2)
	require.Len(t, m.Summary[models.DetailDetailed].KeyPoints, 3)
	require.Equal(t,
		"The first topic sentence has plenty of words in it. The second topic sentence also has plenty of words.",
		m.Summary[models.DetailBrief].Text)
	require.Equal(t, "The first topic sentence has plenty of words in it", m.Summary[models.DetailBrief].KeyPoints[0])
}

func TestFallback_Bounds(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(sampleText)
		b.WriteString("\n\n")
	}
	for seed := int64(0); seed < 5; seed++ {
		m := newTestFallback(seed).Generate(b.String(), "Biology")
		require.LessOrEqual(t, len(m.Flashcards), models.MaxFlashcards)
		require.LessOrEqual(t, len(m.Quiz), models.MaxQuizQuestions)
		require.NoError(t, m.Validate())
		for _, q := range m.Quiz {
			require.GreaterOrEqual(t, q.CorrectAnswerIndex, 0)
			require.Less(t, q.CorrectAnswerIndex, len(q.Options))
		}
	}
}

func TestFallback_Deterministic(t *testing.T) {
	first, err := json.Marshal(newTestFallback(42).Generate(sampleText, "Biology"))
	require.NoError(t, err)
	second, err := json.Marshal(newTestFallback(42).Generate(sampleText, "Biology"))
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestFallback_Content(t *testing.T) {
	m := newTestFallback(7).Generate(sampleText, "Biology")

	require.Equal(t, models.SourceTemplateFallback, m.Metadata.Source)
	require.Equal(t, "Biology", m.Metadata.Title)
	require.Equal(t, fixedNow, m.Metadata.GeneratedAt)
	require.Equal(t, len(Sanitize(sampleText)), m.Metadata.CharacterCount)

	require.Equal(t, "What is Osmosis?", m.Flashcards[0].Question)
	require.Equal(t, CategoryDefinition, m.Flashcards[0].Category)
	require.Equal(t, "What is Diffusion?", m.Flashcards[1].Question)

	categories := map[string]int{}
	for _, c := range m.Flashcards {
		categories[c.Category]++
		require.False(t, c.Known)
	}
	require.Positive(t, categories[CategoryConcept])
	require.Positive(t, categories[CategoryBlank])

	require.NotEmpty(t, m.Quiz)
	require.Equal(t, models.QuestionMultipleChoice, m.Quiz[0].Type)
	require.Len(t, m.Quiz[0].Options, 4)
	require.Equal(t, "water", m.Quiz[0].CorrectAnswer())
	require.NotContains(t, m.Quiz[0].Question, " water ")
	require.Equal(t, "From the text: Osmosis is the movement of ______ across a membrane...", m.Quiz[0].Question)
}

// maxRand always returns the largest allowed value.
type maxRand struct{}

func (maxRand) Intn(n int) int { return n - 1 }

// zeroRand always returns 0.
type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }

func TestFallback_TrueFalseLabels(t *testing.T) {
	sentences := Sentences(Sanitize(sampleText))
	original := map[string]bool{}
	for _, s := range sentences {
		original[s] = true
	}

	falseFirst := NewFallback(FallbackOptions{Rand: maxRand{}, NewID: SequentialIDs("q")}).Generate(sampleText, "")
	sawFalse := false
	for _, q := range falseFirst.Quiz {
		if q.Type != models.QuestionTrueFalse {
			continue
		}
		require.Equal(t, []string{"True", "False"}, q.Options)
		if q.CorrectAnswer() == "False" {
			sawFalse = true
			require.False(t, original[q.Question], "statement labelled False is unchanged: %q", q.Question)
		}
	}
	require.True(t, sawFalse)

	trueOnly := NewFallback(FallbackOptions{Rand: zeroRand{}, NewID: SequentialIDs("q")}).Generate(sampleText, "")
	for _, q := range trueOnly.Quiz {
		if q.Type == models.QuestionTrueFalse {
			require.Equal(t, "True", q.CorrectAnswer())
			require.True(t, original[q.Question], "statement labelled True was changed: %q", q.Question)
		}
	}
}

func TestFallback_Degenerate(t *testing.T) {
	for _, in := range []string{"", "   ", "hi", "©©©", strings.Repeat("word ", 3)} {
		m := newTestFallback(1).Generate(in, "x")
		require.NotNil(t, m)
		require.True(t, m.IsEmpty(), "input %q", in)
	}
}

type stubRemote struct {
	materials *models.StudyMaterials
	err       error
	gotText   string
}

func (s *stubRemote) Generate(ctx context.Context, text, title string) (*models.StudyMaterials, error) {
	s.gotText = text
	return s.materials, s.err
}

func remoteMaterials() *models.StudyMaterials {
	return &models.StudyMaterials{
		Summary: map[models.DetailLevel]models.Summary{
			models.DetailStandard: {Text: "Cells are units of life.", KeyPoints: []string{"Cells"}},
		},
		Flashcards: []models.Flashcard{{ID: "r1", Question: "What is a cell?", Answer: "The unit of life."}},
		Quiz: []models.QuizQuestion{{
			ID: "r2", Question: "Cells are alive?", Type: models.QuestionTrueFalse,
			Options: []string{"True", "False"}, CorrectAnswerIndex: 0,
		}},
		Metadata: models.StudyMetadata{Source: models.SourceClaudeAPI, Provider: "anthropic"},
	}
}

func TestSynthesizer_RemoteSuccess(t *testing.T) {
	remote := &stubRemote{materials: remoteMaterials()}
	s := New(remote, newTestFallback(1), nil)

	m, err := s.Generate(context.Background(), "Cells © are   units of life.", "Cells")
	require.NoError(t, err)
	require.Equal(t, "Cells are units of life.", remote.gotText)
	require.Equal(t, models.SourceClaudeAPI, m.Metadata.Source)
	require.Equal(t, "Cells", m.Metadata.Title)
	require.Equal(t, fixedNow, m.Metadata.GeneratedAt)
	require.True(t, s.HasRemote())
}

func TestSynthesizer_FallsBack(t *testing.T) {
	invalid := remoteMaterials()
	invalid.Quiz[0].CorrectAnswerIndex = 5

	tests := map[string]*stubRemote{
		"transport error": {err: errors.New("connection refused")},
		"invalid index":   {materials: invalid},
		"empty":           {materials: &models.StudyMaterials{}},
		"nil":             {},
	}
	for name, remote := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := New(remote, newTestFallback(1), nil).Generate(context.Background(), sampleText, "Biology")
			require.NoError(t, err)
			require.Equal(t, models.SourceTemplateFallback, m.Metadata.Source)
		})
	}
}

func TestSynthesizer_Exhausted(t *testing.T) {
	s := New(&stubRemote{err: errors.New("down")}, newTestFallback(1), nil)
	_, err := s.Generate(context.Background(), "tiny", "x")
	require.ErrorIs(t, err, ErrFallbackExhausted)

	_, err = New(nil, nil, nil).GenerateLocal("", "x")
	require.ErrorIs(t, err, ErrFallbackExhausted)
}
