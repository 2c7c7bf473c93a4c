package course_generate

import (
	"fmt"
	"strings"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
)

const outlineShape = `{
  "title": "Course title",
  "description": "Two or three sentence course description",
  "learningObjectives": ["objective", "objective"],
  "modules": [
    {
      "title": "Module title",
      "description": "What the module covers",
      "sprints": [
        {"title": "Sprint title", "description": "What the learner does in this sprint"}
      ]
    }
  ]
}`

const sprintShape = `{
  "title": "Sprint title",
  "content": [
    {"type": "text", "title": "optional heading", "content": "body"}
  ],
  "quiz": [
    {"question": "Question?", "options": ["A", "B", "C", "D"], "correctAnswer": 0, "explanation": "Why A is right"}
  ]
}`

func outlinePrompt(req generation.CourseRequest) string {
	var b strings.Builder
	b.WriteString("You are an instructional designer building a course made of short learning sprints.\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Audience: %s\n", req.Audience)
	fmt.Fprintf(&b, "Level: %s\n", req.Level)
	fmt.Fprintf(&b, "Duration: %s\n", req.Duration)
	if g := strings.TrimSpace(req.Goals); g != "" {
		fmt.Fprintf(&b, "Learner goals: %s\n", g)
	}
	b.WriteString("\nDesign a course outline sized to the duration. Use 3 to 6 modules with 2 to 5 sprints each.\n")
	b.WriteString("Sprints are stubs for now: give each a title and a one sentence description only.\n\n")
	b.WriteString("Respond with JSON only, no prose and no markdown, in exactly this shape:\n")
	b.WriteString(outlineShape)
	return b.String()
}

func sprintPrompt(req generation.CourseRequest, outline *generation.CourseOutline, mod generation.Module, stub generation.Sprint) string {
	var b strings.Builder
	b.WriteString("You are writing one sprint of an online course.\n\n")
	fmt.Fprintf(&b, "Course: %s\n", outline.Title)
	fmt.Fprintf(&b, "Audience: %s\nLevel: %s\n", req.Audience, req.Level)
	fmt.Fprintf(&b, "Module: %s\n", mod.Title)
	if d := strings.TrimSpace(mod.Description); d != "" {
		fmt.Fprintf(&b, "Module summary: %s\n", d)
	}
	fmt.Fprintf(&b, "Sprint: %s\n", stub.Title)
	if d := strings.TrimSpace(stub.Description); d != "" {
		fmt.Fprintf(&b, "Sprint summary: %s\n", d)
	}
	b.WriteString("\nWrite 4 to 8 content blocks. Allowed block types: text, key-point, example, visual-tree, activity, reflection.\n")
	b.WriteString("Then write 3 quiz questions, each with exactly 4 options and the zero-based index of the correct option.\n\n")
	b.WriteString("Respond with JSON only, no prose and no markdown, in exactly this shape:\n")
	b.WriteString(sprintShape)
	return b.String()
}
