package synth

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dtnitsch/studybot/models"
	"github.com/google/uuid"
)

const (
	maxBlankCards    = 15
	blankMarker      = "______"
	minBlankWords    = 5 // exclusive
	minBlankWordLen  = 4 // exclusive
	minMCSentenceLen = 20
	minMCWordLen     = 3 // exclusive
	minMCWords       = 5
	minDistractorLen = 4 // exclusive
	mcDistractors    = 3
	stemLength       = 80
	trueFalseEvery   = 3
	minTrueFalseLen  = 15
)

// Flashcard categories.
const (
	CategoryDefinition = "Definitions"
	CategoryConcept    = "Concepts"
	CategoryBlank      = "Fill-in-the-Blank"
)

var leadingNonLetters = regexp.MustCompile(`^[^a-zA-Z]+`)

// Rand is the randomness the fallback needs. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Fallback is the deterministic, template-based generator. Given the same
// Rand seed and ID sequence it produces identical output. It is safe for
// concurrent use; calls are serialized.
type Fallback struct {
	mu    sync.Mutex
	rand  Rand
	newID func() string
	now   func() time.Time
}

// FallbackOptions leaves any nil field at its default: a time-seeded Rand,
// random UUIDs and time.Now.
type FallbackOptions struct {
	Rand  Rand
	NewID func() string
	Now   func() time.Time
}

func NewFallback(opts FallbackOptions) *Fallback {
	f := &Fallback{rand: opts.Rand, newID: opts.NewID, now: opts.Now}
	if f.rand == nil {
		f.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if f.newID == nil {
		f.newID = uuid.NewString
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// SequentialIDs returns a generator of prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

// Generate never fails. Degenerate input yields empty collections; callers
// decide whether that is an error.
func (f *Fallback) Generate(text, title string) *models.StudyMaterials {
	f.mu.Lock()
	defer f.mu.Unlock()

	clean := Sanitize(text)
	sentences := Sentences(clean)
	paragraphs := Paragraphs(text)

	m := &models.StudyMaterials{
		Summary:    f.summaries(sentences),
		Flashcards: f.flashcards(clean, sentences, paragraphs),
		Quiz:       f.quiz(sentences),
		Metadata: models.StudyMetadata{
			Title:          title,
			CharacterCount: len(clean),
			SentenceCount:  len(sentences),
			GeneratedAt:    f.now().UTC(),
			Source:         models.SourceTemplateFallback,
		},
	}
	return m
}

func (f *Fallback) summaries(sentences []string) map[models.DetailLevel]models.Summary {
	topic := TopicSentences(sentences)
	out := make(map[models.DetailLevel]models.Summary, len(models.DetailLevels))
	for _, level := range models.DetailLevels {
		count := int(math.Ceil(float64(len(topic)) * level.Fraction()))
		out[level] = summarize(topic[:count])
	}
	return out
}

func summarize(selected []string) models.Summary {
	if len(selected) == 0 {
		return models.Summary{KeyPoints: []string{}}
	}
	text := strings.Join(selected, ". ") + "."
	points := splitTerminated(text)
	if len(points) > models.MaxKeyPoints {
		points = points[:models.MaxKeyPoints]
	}
	return models.Summary{Text: text, KeyPoints: points}
}

func (f *Fallback) flashcards(clean string, sentences, paragraphs []string) []models.Flashcard {
	cards := make([]models.Flashcard, 0, models.MaxFlashcards)

	for _, d := range ExtractDefinitions(sentences) {
		cards = append(cards, models.Flashcard{
			ID:         f.newID(),
			Question:   "What is " + d.Term + "?",
			Answer:     d.Definition,
			Category:   CategoryDefinition,
			Difficulty: models.DifficultyEasy,
		})
	}

	for _, c := range ExtractConcepts(clean) {
		if len(cards) >= models.MaxFlashcards {
			break
		}
		cards = append(cards, models.Flashcard{
			ID:         f.newID(),
			Question:   "Explain: " + c,
			Answer:     conceptAnswer(sentences, c),
			Category:   CategoryConcept,
			Difficulty: models.DifficultyMedium,
		})
	}

	for _, b := range FillInTheBlanks(paragraphs) {
		if len(cards) >= models.MaxFlashcards {
			break
		}
		cards = append(cards, models.Flashcard{
			ID:         f.newID(),
			Question:   b.Question,
			Answer:     b.Answer,
			Category:   CategoryBlank,
			Difficulty: models.DifficultyMedium,
		})
	}

	if len(cards) > models.MaxFlashcards {
		cards = cards[:models.MaxFlashcards]
	}
	return cards
}

// Blank is a sentence with one word masked.
type Blank struct {
	Question string
	Answer   string
}

// FillInTheBlanks masks the first word longer than 4 characters that is
// neither first nor last, in every sub-sentence of more than 5 words.
func FillInTheBlanks(paragraphs []string) []Blank {
	var out []Blank
	for _, p := range paragraphs {
		for _, s := range terminators.Split(p, -1) {
			words := strings.Fields(s)
			if len(words) <= minBlankWords {
				continue
			}
			idx := -1
			for i := 1; i < len(words)-1; i++ {
				if len(words[i]) > minBlankWordLen {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			answer := words[idx]
			masked := make([]string, len(words))
			copy(masked, words)
			masked[idx] = blankMarker
			out = append(out, Blank{
				Question: "Fill in the blank: " + strings.Join(masked, " "),
				Answer:   answer,
			})
			if len(out) == maxBlankCards {
				return out
			}
		}
	}
	return out
}

func (f *Fallback) quiz(sentences []string) []models.QuizQuestion {
	quiz := make([]models.QuizQuestion, 0, models.MaxQuizQuestions)
	for i, sentence := range sentences {
		if len(quiz) >= models.MaxQuizQuestions {
			break
		}
		if len(sentence) > minMCSentenceLen {
			if q, ok := f.multipleChoice(i, sentences); ok {
				quiz = append(quiz, q)
			}
		}
		if len(quiz) < models.MaxQuizQuestions && i%trueFalseEvery == 0 {
			if q, ok := f.trueFalse(i, sentences); ok {
				quiz = append(quiz, q)
			}
		}
	}
	return quiz
}

func (f *Fallback) multipleChoice(i int, sentences []string) (models.QuizQuestion, bool) {
	var words []string
	for _, w := range strings.Fields(sentences[i]) {
		if len(w) > minMCWordLen {
			words = append(words, w)
		}
	}
	if len(words) < minMCWords {
		return models.QuizQuestion{}, false
	}
	correct := words[len(words)/2]

	distractors := distractorsFor(i, sentences, correct, nil, mcDistractors)
	if len(distractors) < mcDistractors {
		return models.QuizQuestion{}, false
	}

	options := append([]string{correct}, distractors...)
	f.shuffle(options)
	answer := 0
	for j, o := range options {
		if o == correct {
			answer = j
			break
		}
	}

	return models.QuizQuestion{
		ID:                 f.newID(),
		Question:           "From the text: " + maskWord(truncate(sentences[i], stemLength), correct) + "...",
		Type:               models.QuestionMultipleChoice,
		Options:            options,
		CorrectAnswerIndex: answer,
		Difficulty:         models.DifficultyMedium,
	}, true
}

// trueFalse labels a statement True or False at random. A False label comes
// with the statement altered by swapping one word for a word from another
// sentence, so the label is always correct.
func (f *Fallback) trueFalse(i int, sentences []string) (models.QuizQuestion, bool) {
	statement := strings.TrimSpace(leadingNonLetters.ReplaceAllString(sentences[i], ""))
	if len(statement) < minTrueFalseLen {
		return models.QuizQuestion{}, false
	}

	answer := 0
	if f.rand.Intn(2) == 1 {
		if altered, ok := falsify(i, statement, sentences); ok {
			statement = altered
			answer = 1
		}
	}

	return models.QuizQuestion{
		ID:                 f.newID(),
		Question:           statement,
		Type:               models.QuestionTrueFalse,
		Options:            []string{"True", "False"},
		CorrectAnswerIndex: answer,
		Difficulty:         models.DifficultyEasy,
	}, true
}

func falsify(i int, statement string, sentences []string) (string, bool) {
	words := strings.Fields(statement)
	target := -1
	for j := len(words) / 2; j < len(words); j++ {
		if len(words[j]) > minDistractorLen {
			target = j
			break
		}
	}
	if target < 0 {
		return "", false
	}
	replacement := distractorsFor(i, sentences, words[target], words, 1)
	if len(replacement) == 0 {
		return "", false
	}
	words[target] = replacement[0]
	return strings.Join(words, " "), true
}

// distractorsFor collects up to n distinct words longer than 4 characters
// from the sentences after i, wrapping around, that differ from exclude and
// do not appear in avoid.
func distractorsFor(i int, sentences []string, exclude string, avoid []string, n int) []string {
	seen := make(map[string]struct{})
	for _, w := range avoid {
		seen[strings.ToLower(w)] = struct{}{}
	}
	seen[strings.ToLower(exclude)] = struct{}{}

	var out []string
	for k := 1; k < len(sentences); k++ {
		s := sentences[(i+k)%len(sentences)]
		for _, w := range strings.Fields(s) {
			if len(w) <= minDistractorLen {
				continue
			}
			key := strings.ToLower(w)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, w)
			if len(out) == n {
				return out
			}
		}
	}
	return out
}

// shuffle is Fisher–Yates over the injected Rand.
func (f *Fallback) shuffle(s []string) {
	for i := len(s) - 1; i > 0; i-- {
		j := f.rand.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func maskWord(stem, word string) string {
	words := strings.Fields(stem)
	for i, w := range words {
		if w == word {
			words[i] = blankMarker
			return strings.Join(words, " ")
		}
	}
	return stem
}
