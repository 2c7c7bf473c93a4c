package personalized_path

import (
	"fmt"
	"strings"
)

const quizShape = `[
  {"question": "Question?", "options": ["A", "B", "C", "D"], "correctAnswer": 0, "explanation": "Why A is right"}
]`

const reinforcementSprintShape = `{
  "title": "Sprint title",
  "content": [
    {"type": "text", "title": "optional heading", "content": "body"}
  ],
  "quiz": []
}`

func reinforcementSprintPrompt(pathTitle string, area AreaScore) string {
	var b strings.Builder
	b.WriteString("You are writing a short reinforcement sprint for a learner who is weak in one area.\n\n")
	fmt.Fprintf(&b, "Learning path: %s\n", pathTitle)
	fmt.Fprintf(&b, "Focus area: %s\n", area.Name)
	if d := strings.TrimSpace(area.Description); d != "" {
		fmt.Fprintf(&b, "Area summary: %s\n", d)
	}
	fmt.Fprintf(&b, "Current proficiency: %.0f%%\n", area.ProficiencyScore*100)
	b.WriteString("\nWrite 4 to 6 content blocks that rebuild the fundamentals of the focus area with worked examples.\n")
	b.WriteString("Allowed block types: text, key-point, example, visual-tree, activity, reflection. Leave quiz empty.\n\n")
	b.WriteString("Respond with JSON only, no prose and no markdown, in exactly this shape:\n")
	b.WriteString(reinforcementSprintShape)
	return b.String()
}

func quizPrompt(pathTitle string, area AreaScore) string {
	var b strings.Builder
	b.WriteString("You are writing practice quiz questions for a learner who is weak in one area.\n\n")
	fmt.Fprintf(&b, "Learning path: %s\n", pathTitle)
	fmt.Fprintf(&b, "Quiz area: %s\n", area.Name)
	if d := strings.TrimSpace(area.Description); d != "" {
		fmt.Fprintf(&b, "Area summary: %s\n", d)
	}
	b.WriteString("\nWrite 3 multiple-choice questions, each with exactly 4 options and the zero-based index of the correct option.\n\n")
	b.WriteString("Respond with a JSON array only, no prose and no markdown, in exactly this shape:\n")
	b.WriteString(quizShape)
	return b.String()
}
