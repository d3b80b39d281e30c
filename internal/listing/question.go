package listing

// QuestionKind distinguishes the two chatbot question widgets seen during
// an application flow.
type QuestionKind string

const (
	QuestionText   QuestionKind = "text"
	QuestionChoice QuestionKind = "choice"
)

// Question is a single application-form question awaiting an answer.
type Question struct {
	Kind    QuestionKind
	Text    string
	Options []string
}

func (q *Question) IsChoice() bool {
	return q != nil && q.Kind == QuestionChoice && len(q.Options) > 0
}
