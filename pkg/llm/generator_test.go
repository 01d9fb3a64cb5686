package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dtnitsch/studybot/models"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestGenerator_Mock(t *testing.T) {
	g := NewGenerator([]Provider{NewMockProvider()}, GeneratorOptions{NewID: seqIDs()})
	m, err := g.Generate(context.Background(), "Some text about cells.", "Cells")
	require.NoError(t, err)

	require.Len(t, m.Flashcards, 2)
	require.Len(t, m.Quiz, 2)
	require.NoError(t, m.Validate())
	require.Equal(t, models.SourceMockAPI, m.Metadata.Source)
	require.Equal(t, ProviderMock, m.Metadata.Provider)

	require.Len(t, m.Summary, 3)
	require.Equal(t, []string{"Mock point one", "Mock point two"}, m.Summary[models.DetailStandard].KeyPoints)
	require.Equal(t, models.QuestionTrueFalse, m.Quiz[0].Type)
	require.Equal(t, "True", m.Quiz[0].CorrectAnswer())
}

// kindProvider answers each prompt kind with its own reply.
type kindProvider struct {
	name    string
	source  string
	replies map[PromptKind]string
	fail    map[PromptKind]error
}

func (k *kindProvider) Name() string   { return k.name }
func (k *kindProvider) Source() string { return k.source }

func (k *kindProvider) Complete(ctx context.Context, req Request) (string, error) {
	if err := k.fail[req.Kind]; err != nil {
		return "", err
	}
	return k.replies[req.Kind], nil
}

func validReplies() map[PromptKind]string {
	return map[PromptKind]string{
		KindFlashcards: "```json\n[{\"question\":\"What is osmosis?\",\"answer\":\"Water moving across a membrane.\",\"difficulty\":\"HARD\"}]\n```",
		KindSummary:    `Here is the summary: {"text":"Cells move water.","keyPoints":["osmosis"]}`,
		KindQuiz:       `[{"question":"Osmosis moves water.","type":"true-false","options":["True","False"],"correctAnswer":"False"}]`,
	}
}

func TestGenerator_ParsesWrappedResponses(t *testing.T) {
	p := &kindProvider{name: ProviderAnthropic, source: models.SourceClaudeAPI, replies: validReplies()}
	m, err := NewGenerator([]Provider{p}, GeneratorOptions{NewID: seqIDs()}).Generate(context.Background(), "text", "Osmosis")
	require.NoError(t, err)

	require.Equal(t, models.DifficultyHard, m.Flashcards[0].Difficulty)
	require.Equal(t, "Cells move water.", m.Summary[models.DetailBrief].Text)
	require.Equal(t, 1, m.Quiz[0].CorrectAnswerIndex)
	require.Equal(t, models.SourceClaudeAPI, m.Metadata.Source)
}

func TestGenerator_AtomicFailure(t *testing.T) {
	p := &kindProvider{
		name:    ProviderAnthropic,
		source:  models.SourceClaudeAPI,
		replies: validReplies(),
		fail:    map[PromptKind]error{KindQuiz: errors.New("anthropic error 500: overloaded")},
	}
	m, err := NewGenerator([]Provider{p}, GeneratorOptions{}).Generate(context.Background(), "text", "t")
	require.Nil(t, m)
	require.ErrorIs(t, err, ErrRemoteGenerationFailed)
}

func TestGenerator_InvalidJSON(t *testing.T) {
	replies := validReplies()
	replies[KindSummary] = "I'd rather not."
	p := &kindProvider{name: "x", source: "x", replies: replies}
	_, err := NewGenerator([]Provider{p}, GeneratorOptions{}).Generate(context.Background(), "text", "t")
	require.ErrorIs(t, err, ErrRemoteGenerationFailed)
}

func TestGenerator_EmptyAfterValidation(t *testing.T) {
	replies := validReplies()
	replies[KindFlashcards] = `[{"question":"","answer":"x"},{"question":42,"answer":"y"}]`
	replies[KindQuiz] = `[{"question":"q","options":["a","b"],"correctAnswer":7}]`
	p := &kindProvider{name: "x", source: "x", replies: replies}
	_, err := NewGenerator([]Provider{p}, GeneratorOptions{}).Generate(context.Background(), "text", "t")
	require.ErrorIs(t, err, ErrRemoteGenerationFailed)
}

func TestGenerator_NoProviders(t *testing.T) {
	g := NewGenerator(nil, GeneratorOptions{})
	_, err := g.Generate(context.Background(), "text", "t")
	require.ErrorIs(t, err, ErrRemoteGenerationFailed)
	require.ErrorIs(t, err, ErrNoProviders)
}

func TestGenerator_ProxySourceWins(t *testing.T) {
	replies := validReplies()
	first := &kindProvider{
		name:    ProviderAnthropic,
		source:  models.SourceClaudeAPI,
		replies: replies,
		fail:    map[PromptKind]error{KindSummary: errors.New("rate limited")},
	}
	proxy := &kindProvider{name: ProviderProxy, source: models.SourceProxyAPI, replies: replies}

	g := NewGenerator([]Provider{first, proxy}, GeneratorOptions{NewID: seqIDs()})
	m, err := g.Generate(context.Background(), "text", "t")
	require.NoError(t, err)
	require.Equal(t, models.SourceProxyAPI, m.Metadata.Source)
	require.Equal(t, ProviderAnthropic, m.Metadata.Provider)
	require.True(t, UsesProxy(m))

	// Without the proxy the summary prompt has nowhere to go.
	_, err = g.Without(ProviderProxy).Generate(context.Background(), "text", "t")
	require.ErrorIs(t, err, ErrRemoteGenerationFailed)
	require.Equal(t, 1, g.Without(ProviderProxy).Len())
}

func TestParseFlashcards(t *testing.T) {
	long := strings.Repeat("q", 600)
	raw := fmt.Sprintf(`{"flashcards":[
  {"question":%q,"answer":"a"},
  {"question":"ok","answer":"fine","difficulty":"weird"},
  {"question":"missing answer"}
]}`, long)
	cards, err := parseFlashcards(raw, seqIDs())
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.Len(t, []rune(cards[0].Question), maxQuestionLen)
	require.Equal(t, models.DifficultyMedium, cards[1].Difficulty)
	require.Equal(t, "id-2", cards[1].ID)

	var many []string
	for i := 0; i < 60; i++ {
		many = append(many, fmt.Sprintf(`{"question":"q%d","answer":"a"}`, i))
	}
	cards, err = parseFlashcards("["+strings.Join(many, ",")+"]", seqIDs())
	require.NoError(t, err)
	require.Len(t, cards, models.MaxFlashcards)

	_, err = parseFlashcards(`{"text":"no array"}`, seqIDs())
	require.Error(t, err)
}

func TestParseSummary(t *testing.T) {
	text := strings.Repeat("x", 2500)
	raw := fmt.Sprintf(`{"text":%q,"keyPoints":["a"," ",3,"b","c","d","e","f"]}`, text)
	s, err := parseSummary(raw)
	require.NoError(t, err)
	require.Len(t, s[models.DetailBrief].Text, maxBriefLen)
	require.Len(t, s[models.DetailDetailed].Text, maxSummaryLen)
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, s[models.DetailStandard].KeyPoints)

	_, err = parseSummary(`{"keyPoints":["a"]}`)
	require.Error(t, err)
	_, err = parseSummary(`["not","an","object"]`)
	require.Error(t, err)
}

func TestParseQuiz(t *testing.T) {
	raw := `[
  {"question":"a","options":["1","2","3","4","5"],"correctAnswerIndex":3},
  {"question":"b","options":["1","2","3","4","5"],"correctAnswer":4},
  {"question":"c","options":["only"],"correctAnswer":0},
  {"question":"d","options":["x","y"],"correctAnswer":1.5},
  {"question":"e","type":"true-false","options":["True","False"],"correctAnswer":"true"},
  {"question":"f","options":["x","y"]}
]`
	quiz, err := parseQuiz(raw, seqIDs())
	require.NoError(t, err)
	require.Len(t, quiz, 2)

	require.Len(t, quiz[0].Options, maxOptions)
	require.Equal(t, 3, quiz[0].CorrectAnswerIndex)
	require.Equal(t, models.QuestionMultipleChoice, quiz[0].Type)

	require.Equal(t, "e", quiz[1].Question)
	require.Equal(t, models.QuestionTrueFalse, quiz[1].Type)
	require.Equal(t, 0, quiz[1].CorrectAnswerIndex)
}
