package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"quiz-client/internal/portal"
	"quiz-client/internal/quiz"
)

// syncWriter serializes the prompt and the attempt loop's notices.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := readLine(reader)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

// parseQuestionNumber turns a 1-based question number into the question.
func parseQuestionNumber(set quiz.QuestionSet, arg string) (quiz.Question, int, error) {
	number, err := strconv.Atoi(arg)
	if err != nil || number < 1 || number > len(set.Questions) {
		return quiz.Question{}, 0, fmt.Errorf("question must be a number between 1 and %d", len(set.Questions))
	}
	return set.Questions[number-1], number, nil
}

// parseOption accepts an option number, a letter (A = first option) or the option
// text itself, case-insensitively.
func parseOption(question quiz.Question, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	count := len(question.Options)
	if count == 0 {
		return "", errors.New("question has no options")
	}

	if number, err := strconv.Atoi(arg); err == nil {
		if number < 1 || number > count {
			return "", fmt.Errorf("option must be between 1 and %d", count)
		}
		return question.Options[number-1].Text, nil
	}

	if len(arg) == 1 && unicode.IsLetter(rune(arg[0])) {
		letter := unicode.ToUpper(rune(arg[0]))
		if idx := int(letter - 'A'); idx >= 0 && idx < count {
			return question.Options[idx].Text, nil
		}
	}

	for _, option := range question.Options {
		if strings.EqualFold(strings.TrimSpace(option.Text), arg) {
			return option.Text, nil
		}
	}
	return "", fmt.Errorf("unknown option %q", arg)
}

func parseQuizID(args []string, usage string) (quiz.ID, error) {
	if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
		return quiz.ID{}, errors.New(usage)
	}
	return quiz.NewID(args[1]), nil
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, portal.ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	}
	return err
}

// submitFailure is the user-facing reason for a failed submission: the backend's
// message when it sent one.
func submitFailure(err error, serverURL string) string {
	var apiErr *portal.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return "Submission failed: " + apiErr.Message
	}
	if errors.Is(err, portal.ErrServiceUnavailable) {
		return "Submission failed: " + describeClientError(err, serverURL).Error()
	}
	return "Submission failed"
}

func formatScore(score float64) string {
	return quiz.FormatMarks(score)
}
