package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"quiz-client/internal/portal"
	"quiz-client/internal/quiz"
)

func TestParseOption(t *testing.T) {
	question := quiz.Question{
		ID:      quiz.NewID("1"),
		Type:    quiz.TypeTrueFalse,
		Options: []quiz.Option{{Text: "True"}, {Text: "False"}},
	}

	cases := map[string]string{"1": "True", "2": "False", "b": "False", "TRUE": "True", "false": "False"}
	for arg, want := range cases {
		got, err := parseOption(question, arg)
		if err != nil || got != want {
			t.Fatalf("parseOption(%q) = (%q, %v), want (%q, nil)", arg, got, err, want)
		}
	}

	for _, arg := range []string{"0", "3", "z", "maybe"} {
		if _, err := parseOption(question, arg); err == nil {
			t.Fatalf("parseOption(%q) expected error", arg)
		}
	}
}

func TestParseQuestionNumber(t *testing.T) {
	set := quiz.QuestionSet{Questions: []quiz.Question{{ID: quiz.NewID("10")}, {ID: quiz.NewID("11")}}}

	question, number, err := parseQuestionNumber(set, "2")
	if err != nil || question.ID.String() != "11" || number != 2 {
		t.Fatalf("parseQuestionNumber = (%v, %d, %v)", question.ID, number, err)
	}
	if _, _, err := parseQuestionNumber(set, "3"); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestPromptYesNoRetriesUntilValid(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("maybe\nyes\n"))
	var out bytes.Buffer

	ok, err := promptYesNo(reader, &out, "continue? ")
	if err != nil {
		t.Fatalf("promptYesNo returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected yes result")
	}
	if !strings.Contains(out.String(), "Please answer yes or no.") {
		t.Fatalf("expected retry hint in output, got: %s", out.String())
	}
}

func TestSubmitFailure(t *testing.T) {
	apiErr := &portal.APIError{StatusCode: 400, Message: "Quiz already submitted"}
	if got := submitFailure(fmt.Errorf("submit: %w", apiErr), "http://x"); got != "Submission failed: Quiz already submitted" {
		t.Fatalf("submitFailure(api) = %q", got)
	}

	unavailable := fmt.Errorf("%w: dial tcp", portal.ErrServiceUnavailable)
	if got := submitFailure(unavailable, "http://x"); got != "Submission failed: quiz service unavailable at http://x" {
		t.Fatalf("submitFailure(unavailable) = %q", got)
	}

	if got := submitFailure(errors.New("boom"), "http://x"); got != "Submission failed" {
		t.Fatalf("submitFailure(other) = %q", got)
	}
}

func TestRenderCatalogEmptySections(t *testing.T) {
	text := renderCatalog(quiz.Catalog{}, nil)
	for _, want := range []string{"No active quizzes.", "No upcoming quizzes.", "No completed quizzes."} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in:\n%s", want, text)
		}
	}
}

func TestRenderSummaryMultilineCode(t *testing.T) {
	text := renderSummary(quiz.Summary{
		QuizTitle:  "Loops",
		TotalMarks: 1,
		Answers: []quiz.ReviewItem{{
			Question:      "What prints <code>for i := 0; i < 2; i++ {\nfmt.Println(i)\n}</code>",
			YourAnswer:    "0 1",
			CorrectAnswer: "0 1",
			IsCorrect:     true,
		}},
	})
	for _, want := range []string{"Score: 0 / 1", "        fmt.Println(i)", "    Correct\n"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in:\n%s", want, text)
		}
	}
}
