package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/studybot/models"
	"github.com/tidwall/gjson"
)

// Length caps applied to remote output, in characters.
const (
	maxQuestionLen = 500
	maxAnswerLen   = 1000
	maxSummaryLen  = 2000
	maxBriefLen    = 200
	maxOptions     = 4
	categoryRemote = "Generated"
)

// parseFlashcards keeps items with a non-empty string question and answer.
// The response must be a JSON array, or an object with a "flashcards" array.
func parseFlashcards(raw string, newID func() string) ([]models.Flashcard, error) {
	items, err := jsonArray(raw, "flashcards")
	if err != nil {
		return nil, fmt.Errorf("flashcards: %w", err)
	}

	cards := make([]models.Flashcard, 0, len(items))
	for _, item := range items {
		q, a := stringField(item, "question"), stringField(item, "answer")
		if q == "" || a == "" {
			continue
		}
		cards = append(cards, models.Flashcard{
			ID:         newID(),
			Question:   truncateRunes(q, maxQuestionLen),
			Answer:     truncateRunes(a, maxAnswerLen),
			Category:   categoryRemote,
			Difficulty: difficulty(item.Get("difficulty").String()),
		})
		if len(cards) == models.MaxFlashcards {
			break
		}
	}
	return cards, nil
}

// parseSummary requires a non-empty "text". Brief is the first 200
// characters; standard and detailed carry the full text.
func parseSummary(raw string) (map[models.DetailLevel]models.Summary, error) {
	js, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	obj := gjson.Parse(js)
	if !obj.IsObject() {
		return nil, errors.New("summary: expected an object")
	}
	text := stringField(obj, "text")
	if text == "" {
		text = stringField(obj, "summary")
	}
	if text == "" {
		return nil, errors.New("summary: missing text")
	}
	text = truncateRunes(text, maxSummaryLen)

	points := []string{}
	kp := obj.Get("keyPoints")
	if !kp.Exists() {
		kp = obj.Get("key_points")
	}
	for _, p := range kp.Array() {
		if p.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(p.String()); s != "" {
			points = append(points, truncateRunes(s, maxQuestionLen))
		}
		if len(points) == models.MaxKeyPoints {
			break
		}
	}

	return map[models.DetailLevel]models.Summary{
		models.DetailBrief:    {Text: truncateRunes(text, maxBriefLen), KeyPoints: points},
		models.DetailStandard: {Text: text, KeyPoints: points},
		models.DetailDetailed: {Text: text, KeyPoints: points},
	}, nil
}

// parseQuiz keeps items with a question, at least two options and a correct
// answer that falls within the (capped) options.
func parseQuiz(raw string, newID func() string) ([]models.QuizQuestion, error) {
	items, err := jsonArray(raw, "quiz")
	if err != nil {
		return nil, fmt.Errorf("quiz: %w", err)
	}

	quiz := make([]models.QuizQuestion, 0, len(items))
	for _, item := range items {
		q := stringField(item, "question")
		if q == "" {
			continue
		}
		var options []string
		for _, o := range item.Get("options").Array() {
			if s := strings.TrimSpace(o.String()); s != "" && o.Type == gjson.String {
				options = append(options, s)
			}
		}
		if len(options) > maxOptions {
			options = options[:maxOptions]
		}
		if len(options) < 2 {
			continue
		}
		idx, ok := correctIndex(item, options)
		if !ok {
			continue
		}

		kind := models.QuestionMultipleChoice
		if item.Get("type").String() == models.QuestionTrueFalse {
			kind = models.QuestionTrueFalse
		}
		quiz = append(quiz, models.QuizQuestion{
			ID:                 newID(),
			Question:           truncateRunes(q, maxQuestionLen),
			Type:               kind,
			Options:            options,
			CorrectAnswerIndex: idx,
			Difficulty:         difficulty(item.Get("difficulty").String()),
		})
		if len(quiz) == models.MaxQuizQuestions {
			break
		}
	}
	return quiz, nil
}

// correctIndex reads correctAnswerIndex or correctAnswer, as a number or as
// the text of one of the options.
func correctIndex(item gjson.Result, options []string) (int, bool) {
	v := item.Get("correctAnswerIndex")
	if !v.Exists() {
		v = item.Get("correctAnswer")
	}
	if !v.Exists() {
		v = item.Get("correct_answer_index")
	}
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		i := int(f)
		if float64(i) != f || i < 0 || i >= len(options) {
			return 0, false
		}
		return i, true
	case gjson.String:
		for i, o := range options {
			if strings.EqualFold(o, strings.TrimSpace(v.String())) {
				return i, true
			}
		}
	}
	return 0, false
}

func jsonArray(raw, field string) ([]gjson.Result, error) {
	js, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	v := gjson.Parse(js)
	if v.IsObject() {
		v = v.Get(field)
	}
	if !v.IsArray() {
		return nil, errors.New("expected a JSON array")
	}
	return v.Array(), nil
}

func stringField(v gjson.Result, key string) string {
	f := v.Get(key)
	if f.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(f.String())
}

func difficulty(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.DifficultyEasy:
		return models.DifficultyEasy
	case models.DifficultyHard:
		return models.DifficultyHard
	default:
		return models.DifficultyMedium
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
