package generation

import "strings"

// CourseRequest is the caller's input for a course-generation job (request_data).
type CourseRequest struct {
	Topic    string `json:"topic" validate:"required,max=300"`
	Audience string `json:"audience" validate:"required,max=300"`
	Level    string `json:"level" validate:"required,max=100"`
	Duration string `json:"duration" validate:"required,max=100"`
	Goals    string `json:"goals" validate:"max=2000"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r CourseRequest) Trimmed() CourseRequest {
	return CourseRequest{
		Topic:    strings.TrimSpace(r.Topic),
		Audience: strings.TrimSpace(r.Audience),
		Level:    strings.TrimSpace(r.Level),
		Duration: strings.TrimSpace(r.Duration),
		Goals:    strings.TrimSpace(r.Goals),
	}
}

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockKeyPoint   BlockType = "key-point"
	BlockExample    BlockType = "example"
	BlockVisualTree BlockType = "visual-tree"
	BlockActivity   BlockType = "activity"
	BlockReflection BlockType = "reflection"
)

func (b BlockType) Known() bool {
	switch b {
	case BlockText, BlockKeyPoint, BlockExample, BlockVisualTree, BlockActivity, BlockReflection:
		return true
	}
	return false
}

// PlaceholderText is the body of a sprint whose generation failed.
const PlaceholderText = "Content will be provided when you start this sprint"

// CourseOutline is the result of the outline stage and, once sprints are filled in,
// the final course_data payload.
type CourseOutline struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	LearningObjectives []string `json:"learningObjectives"`
	Modules            []Module `json:"modules"`
}

type Module struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Sprints     []Sprint `json:"sprints"`
}

type Sprint struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Content     []ContentBlock `json:"content"`
	Quiz        []QuizItem     `json:"quiz"`
	Placeholder bool           `json:"isPlaceholder,omitempty"`
}

// SprintContent is what the model returns for a single sprint.
type SprintContent struct {
	Title   string         `json:"title"`
	Content []ContentBlock `json:"content"`
	Quiz    []QuizItem     `json:"quiz"`
}

type ContentBlock struct {
	Type    BlockType `json:"type"`
	Title   string    `json:"title,omitempty"`
	Content string    `json:"content"`
}

type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// SprintCount is the number of sprint stubs across all modules.
func (o *CourseOutline) SprintCount() int {
	n := 0
	for _, m := range o.Modules {
		n += len(m.Sprints)
	}
	return n
}

// PlaceholderSprint keeps the stub's title and replaces the body with PlaceholderText.
func PlaceholderSprint(stub Sprint) Sprint {
	return Sprint{
		Title:       stub.Title,
		Description: stub.Description,
		Content:     []ContentBlock{{Type: BlockText, Content: PlaceholderText}},
		Quiz:        []QuizItem{},
		Placeholder: true,
	}
}

// Normalize drops quiz items that cannot be answered and unknown block types become text.
func (c *SprintContent) Normalize() {
	blocks := c.Content[:0]
	for _, b := range c.Content {
		if strings.TrimSpace(b.Content) == "" {
			continue
		}
		if !b.Type.Known() {
			b.Type = BlockText
		}
		blocks = append(blocks, b)
	}
	c.Content = blocks

	quiz := c.Quiz[:0]
	for _, q := range c.Quiz {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			continue
		}
		quiz = append(quiz, q)
	}
	c.Quiz = quiz
}
