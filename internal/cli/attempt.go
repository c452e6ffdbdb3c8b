package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quiz-client/internal/attempt"
	"quiz-client/internal/quiz"
)

func (a *app) startAttempt(quizID quiz.ID) error {
	item, ok := a.catalog.Find(quizID)
	if !ok {
		return fmt.Errorf("%w: %s (type 'list' to refresh)", quiz.ErrQuizNotFound, quizID)
	}
	if item.Status != quiz.StatusActive {
		return fmt.Errorf("quiz %s is %s; only active quizzes can be started", quizID, item.Status)
	}

	// The catalog entry carries the id type the backend issued.
	quizID = item.ID
	studentID := a.identity.StudentID
	if err := a.cfg.Backend.StartQuiz(a.ctx, quizID, studentID); err != nil {
		return describeClientError(err, a.cfg.ServerURL)
	}
	set, err := a.cfg.Backend.GetQuestions(a.ctx, quizID, studentID)
	if err != nil {
		return describeClientError(err, a.cfg.ServerURL)
	}
	if set.DurationMinutes <= 0 {
		set.DurationMinutes = item.DurationMinutes
	}
	if strings.TrimSpace(set.Title) == "" {
		set.Title = item.Title
	}
	if set.TotalMarks == 0 {
		set.TotalMarks = item.TotalMarks
	}

	cfg := attempt.Config{
		StudentID: studentID,
		Questions: set,
		Submitter: a.cfg.Backend,
		Notify:    a.attemptNotice(set),
		Logger:    a.cfg.Logger,
	}
	if a.cfg.Ticks != nil {
		cfg.Ticks = a.cfg.Ticks()
	}
	sess, err := attempt.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(a.ctx)
	go sess.Run(ctx)

	a.attempt = &attemptView{quiz: item, session: sess, cancel: cancel}
	a.view = viewAttempt
	return a.showAttempt()
}

// attemptNotice runs on the attempt loop. Results of user submissions are printed
// by the submit command itself.
func (a *app) attemptNotice(set quiz.QuestionSet) func(attempt.Notice) {
	return func(n attempt.Notice) {
		switch n.Kind {
		case attempt.NoticeTick:
			if reminders[n.Remaining] {
				fmt.Fprintf(a.out, "\n%s remaining.\n", attempt.FormatRemaining(n.Remaining))
			}
		case attempt.NoticeExpired:
			fmt.Fprintln(a.out, "\nTime is up. Submitting your answers...")
		case attempt.NoticeSubmitted:
			if n.Trigger == attempt.TriggerTimer {
				fmt.Fprintf(a.out, "Submitted automatically. Score: %s / %s\n", formatScore(n.Score), formatScore(set.TotalMarks))
			}
		case attempt.NoticeSubmitFailed:
			if n.Trigger == attempt.TriggerTimer {
				fmt.Fprintf(a.out, "error: %s. Type 'submit' to retry.\n", submitFailure(n.Err, a.cfg.ServerURL))
			}
		}
	}
}

func (a *app) attemptCommand(command string, args []string) error {
	sess := a.attempt.session
	set := sess.Questions()

	switch command {
	case "show":
		return a.showAttempt()
	case "answer", "toggle":
		if len(args) != 3 {
			return fmt.Errorf("usage: %s <question> <option>", command)
		}
		question, number, err := parseQuestionNumber(set, args[1])
		if err != nil {
			return err
		}
		option, err := parseOption(question, args[2])
		if err != nil {
			return err
		}

		if command == "answer" {
			if err := sess.Choose(a.ctx, question.ID, option); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Q%d: %s\n", number, option)
			return nil
		}

		selected, err := sess.Toggle(a.ctx, question.ID, option)
		if err != nil {
			return err
		}
		if selected {
			fmt.Fprintf(a.out, "Q%d: selected %s\n", number, option)
		} else {
			fmt.Fprintf(a.out, "Q%d: deselected %s\n", number, option)
		}
		return nil
	case "clear":
		if len(args) != 2 {
			return errors.New("usage: clear <question>")
		}
		question, number, err := parseQuestionNumber(set, args[1])
		if err != nil {
			return err
		}
		if err := sess.Clear(a.ctx, question.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Q%d cleared.\n", number)
		return nil
	case "time":
		state, err := sess.Snapshot(a.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Time left: %s (%s)\n", attempt.FormatRemaining(state.Remaining), state.Phase)
		return nil
	case "submit":
		return a.submit()
	case "summary":
		state, err := sess.Snapshot(a.ctx)
		if err != nil {
			return err
		}
		if state.Phase != attempt.PhaseCommitted {
			return errors.New("submit the quiz before viewing its summary")
		}
		return a.openSummary(set.QuizID, viewAttempt)
	case "back":
		if !a.mayLeaveAttempt() {
			return nil
		}
		a.closeAttempt()
		a.view = viewList
		return a.refreshList()
	default:
		return errUnknownCommand
	}
}

func (a *app) showAttempt() error {
	state, err := a.attempt.session.Snapshot(a.ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderQuestions(a.attempt.session.Questions(), state))
	return nil
}

func (a *app) submit() error {
	set := a.attempt.session.Questions()
	score, err := a.attempt.session.Submit(a.ctx)
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "Submitted. Score: %s / %s\n", formatScore(score), formatScore(set.TotalMarks))
		return nil
	case errors.Is(err, attempt.ErrAlreadySubmitted), errors.Is(err, attempt.ErrSubmissionInFlight):
		return err
	default:
		return errors.New(submitFailure(err, a.cfg.ServerURL))
	}
}

// mayLeaveAttempt refuses while a submission is in flight and asks before
// discarding unsubmitted answers.
func (a *app) mayLeaveAttempt() bool {
	if a.attempt == nil {
		return true
	}
	state, err := a.attempt.session.Snapshot(a.ctx)
	if err != nil {
		return true
	}

	switch state.Phase {
	case attempt.PhaseInFlight:
		fmt.Fprintln(a.out, "A submission is in progress; wait for it to finish.")
		return false
	case attempt.PhaseIdle:
		leave, err := promptYesNo(a.reader, a.out, "Leave without submitting? Your answers will be lost. (yes/no): ")
		return err == nil && leave
	default:
		return true
	}
}

func (a *app) closeAttempt() {
	if a.attempt == nil {
		return
	}
	a.attempt.cancel()
	<-a.attempt.session.Done()
	a.attempt = nil
}
