package cli

import (
	"fmt"
	"strings"
	"time"

	"quiz-client/internal/attempt"
	"quiz-client/internal/markup"
	"quiz-client/internal/quiz"
)

const startTimeLayout = "02 Jan 2006 15:04 MST"

func renderCatalog(catalog quiz.Catalog, loc *time.Location) string {
	var b strings.Builder

	b.WriteString("Active quizzes:\n")
	if len(catalog.Active) == 0 {
		b.WriteString("  No active quizzes.\n")
	}
	for _, item := range catalog.Active {
		fmt.Fprintf(&b, "  [%s] %s  started %s  %d min  %s marks\n",
			item.ID, item.Title, formatStart(item.StartTime, loc), item.DurationMinutes, formatScore(item.TotalMarks))
	}

	b.WriteString("Upcoming quizzes:\n")
	if len(catalog.Upcoming) == 0 {
		b.WriteString("  No upcoming quizzes.\n")
	}
	for _, item := range catalog.Upcoming {
		fmt.Fprintf(&b, "  [%s] %s  starts %s  %d min  %s marks\n",
			item.ID, item.Title, formatStart(item.StartTime, loc), item.DurationMinutes, formatScore(item.TotalMarks))
	}

	b.WriteString("Completed quizzes:\n")
	if len(catalog.Completed) == 0 {
		b.WriteString("  No completed quizzes.\n")
	}
	for _, item := range catalog.Completed {
		line := fmt.Sprintf("  [%s] %s", item.ID, item.Title)
		if item.Score != nil {
			line += fmt.Sprintf("  score %s/%s", formatScore(*item.Score), formatScore(item.TotalMarks))
		}
		if item.Position != nil {
			line += fmt.Sprintf("  rank #%d", *item.Position)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func formatStart(ts quiz.Timestamp, loc *time.Location) string {
	if ts.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(startTimeLayout)
}

func typeLabel(t quiz.QuestionType) string {
	switch t {
	case quiz.TypeMultiSelect:
		return "select all that apply"
	case quiz.TypeTrueFalse:
		return "true/false"
	default:
		return "single choice"
	}
}

// renderQuestions prints the whole sheet with the current answers marked.
func renderQuestions(set quiz.QuestionSet, state attempt.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  (%s marks, %d min)\n", set.Title, formatScore(set.TotalMarks), set.DurationMinutes)
	fmt.Fprintf(&b, "Status: %s  Time left: %s\n", state.Phase, attempt.FormatRemaining(state.Remaining))

	for idx, question := range set.Questions {
		fmt.Fprintf(&b, "\nQ%d. [%s] %s\n", idx+1, typeLabel(question.Type), indentContinuation(markup.Terminal(question.Text)))
		answer := state.Answers[question.ID]
		for optIdx, option := range question.Options {
			fmt.Fprintf(&b, "   %s %d) %s\n", optionMarker(question, answer, option.Text), optIdx+1, indentContinuation(markup.Terminal(option.Text)))
		}
	}
	return b.String()
}

func optionMarker(question quiz.Question, answer, option string) string {
	if question.Type.MultiSelect() {
		if attempt.IsSelected(answer, option) {
			return "[x]"
		}
		return "[ ]"
	}
	if answer == option {
		return "(*)"
	}
	return "( )"
}

func renderSummary(summary quiz.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", summary.QuizTitle)
	fmt.Fprintf(&b, "Score: %s / %s\n", formatScore(summary.YourScore), formatScore(summary.TotalMarks))
	fmt.Fprintf(&b, "Students attended: %d  Average: %.2f  Median: %.2f\n",
		summary.StudentsAttended, summary.AverageMarks, summary.MedianMarks)

	for idx, item := range summary.Answers {
		fmt.Fprintf(&b, "\nQ%d. %s\n", idx+1, indentContinuation(markup.Terminal(item.Question)))
		fmt.Fprintf(&b, "    Your answer:    %s\n", markup.Terminal(item.YourAnswer.Display()))
		fmt.Fprintf(&b, "    Correct answer: %s\n", markup.Terminal(item.CorrectAnswer.Display()))
		if item.IsCorrect {
			b.WriteString("    Correct\n")
		} else {
			b.WriteString("    Incorrect\n")
		}
		if feedback := strings.TrimSpace(item.Feedback); feedback != "" {
			fmt.Fprintf(&b, "    Feedback: %s\n", indentContinuation(markup.Terminal(feedback)))
		}
	}
	return b.String()
}

func indentContinuation(text string) string {
	return strings.ReplaceAll(strings.TrimRight(text, "\n"), "\n", "\n    ")
}

func printHelp(b *strings.Builder, v view) {
	b.WriteString("Commands:\n")
	switch v {
	case viewLogin:
		b.WriteString("  login <email>\n")
	case viewList:
		b.WriteString("  list\n")
		b.WriteString("  start <quiz_id>\n")
		b.WriteString("  summary <quiz_id>\n")
		b.WriteString("  logout\n")
	case viewAttempt:
		b.WriteString("  show\n")
		b.WriteString("  answer <question> <option>\n")
		b.WriteString("  toggle <question> <option>\n")
		b.WriteString("  clear <question>\n")
		b.WriteString("  time\n")
		b.WriteString("  submit\n")
		b.WriteString("  summary\n")
		b.WriteString("  back\n")
	case viewSummary:
		b.WriteString("  show\n")
		b.WriteString("  export [path]\n")
		b.WriteString("  back\n")
	}
	b.WriteString("  help\n")
	b.WriteString("  exit\n")
}
