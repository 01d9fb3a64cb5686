package llm

import "fmt"

func flashcardsPrompt(content, title string) string {
	return fmt.Sprintf(`Extract 5-10 flashcards from this text. Format as valid JSON array (no markdown, just raw JSON):
[
  {"question": "...", "answer": "...", "difficulty": "easy|medium|hard"}
]

Requirements:
- Questions should be clear and unambiguous
- Answers should be concise (1-3 sentences max)
- Cover different aspects of the content
- Vary difficulty levels from easy to hard
- Only return the JSON array, no other text

Content title: %q

Content to extract from:
%s`, title, content)
}

func summaryPrompt(content, title string) string {
	return fmt.Sprintf(`Create a standard summary of this text.

Level: standard
3-5 sentences, main points

Also provide 3-5 key points as a list.

Format as valid JSON (no markdown, just raw JSON):
{
  "text": "...",
  "keyPoints": ["...", "..."]
}

Content title: %q

Content:
%s`, title, content)
}

func quizPrompt(content, title string) string {
	return fmt.Sprintf(`Create 5 quiz questions from this text. Format as valid JSON array (no markdown, just raw JSON):
[
  {
    "question": "...",
    "type": "multiple-choice",
    "options": ["A", "B", "C", "D"],
    "correctAnswer": 0,
    "difficulty": "easy|medium|hard"
  },
  {
    "question": "...",
    "type": "true-false",
    "options": ["True", "False"],
    "correctAnswer": 0,
    "difficulty": "easy|medium|hard"
  }
]

Requirements:
- Mix multiple choice and true/false questions
- For multiple choice: provide 4 options, correctAnswer is index (0-3)
- For true/false: options are always ["True", "False"], correctAnswer is 0 or 1
- Distractors should be plausible but clearly wrong
- Cover the most important concepts
- Only return the JSON array, no other text

Content title: %q

Content to create quiz from:
%s`, title, content)
}
