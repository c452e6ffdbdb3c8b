// Package cli is the interactive terminal front end: a prompt whose command set
// follows the active view (login, quiz list, attempt, summary).
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quiz-client/internal/attempt"
	"quiz-client/internal/quiz"
	"quiz-client/internal/report"
	"quiz-client/internal/session"
	"quiz-client/internal/validator"
)

// Backend is the part of the quiz service the views consume.
type Backend interface {
	SetToken(token string)
	Login(ctx context.Context, credentials quiz.Credentials) (quiz.Identity, error)
	ListQuizzes(ctx context.Context, studentID quiz.ID) (quiz.Catalog, error)
	StartQuiz(ctx context.Context, quizID, studentID quiz.ID) error
	GetQuestions(ctx context.Context, quizID, studentID quiz.ID) (quiz.QuestionSet, error)
	SubmitQuiz(ctx context.Context, submission quiz.Submission) (quiz.SubmitResult, error)
	GetSummary(ctx context.Context, quizID, studentID quiz.ID) (quiz.Summary, error)
}

type Config struct {
	Backend   Backend
	Session   *session.Manager
	ServerURL string
	Location  *time.Location
	ExportDir string
	PageSize  string
	// ReadPassword reads a password without echo. When nil the password is read as
	// a plain input line.
	ReadPassword func() (string, error)
	// Ticks supplies the countdown clock of each attempt. When nil a one-second
	// ticker is used.
	Ticks  func() <-chan time.Time
	Logger zerolog.Logger
}

type view int

const (
	viewLogin view = iota
	viewList
	viewAttempt
	viewSummary
)

// reminders are the remaining-time marks announced during an attempt.
var reminders = map[int]bool{300: true, 60: true, 30: true, 10: true}

type app struct {
	ctx    context.Context
	cfg    Config
	reader *bufio.Reader
	out    *syncWriter
	log    zerolog.Logger

	view     view
	identity quiz.Identity
	catalog  quiz.Catalog
	attempt  *attemptView
	summary  *summaryView
}

type attemptView struct {
	quiz    quiz.Quiz
	session *attempt.Session
	cancel  context.CancelFunc
}

type summaryView struct {
	quizID  quiz.ID
	summary quiz.Summary
	// from is the view "back" returns to.
	from view
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	if cfg.Backend == nil {
		return errors.New("backend is required")
	}
	if cfg.Session == nil {
		return errors.New("session manager is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if strings.TrimSpace(cfg.ExportDir) == "" {
		cfg.ExportDir = "."
	}

	a := &app{
		ctx:    ctx,
		cfg:    cfg,
		reader: bufio.NewReader(in),
		out:    &syncWriter{w: out},
		log:    cfg.Logger.With().Str("component", "cli").Logger(),
	}
	defer a.closeAttempt()

	fmt.Fprintf(a.out, "quiz-client\nserver=%s\n\n", cfg.ServerURL)
	a.restore()
	a.help()

	for {
		fmt.Fprint(a.out, "\n> ")
		line, err := a.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(line) != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			a.help()
			continue
		case "exit", "quit":
			if a.view == viewAttempt && !a.mayLeaveAttempt() {
				continue
			}
			return nil
		}

		var cmdErr error
		switch a.view {
		case viewLogin:
			cmdErr = a.loginCommand(command, args)
		case viewList:
			cmdErr = a.listCommand(command, args)
		case viewAttempt:
			cmdErr = a.attemptCommand(command, args)
		case viewSummary:
			cmdErr = a.summaryCommand(command, args)
		}
		switch {
		case errors.Is(cmdErr, errUnknownCommand):
			fmt.Fprintln(a.out, "unknown command. type 'help' for usage.")
		case cmdErr != nil:
			fmt.Fprintf(a.out, "error: %v\n", cmdErr)
		}
	}
}

var errUnknownCommand = errors.New("unknown command")

func (a *app) help() {
	var b strings.Builder
	printHelp(&b, a.view)
	fmt.Fprint(a.out, b.String())
}

func (a *app) restore() {
	identity, ok, err := a.cfg.Session.Restore(a.ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("Session restore failed")
		fmt.Fprintf(a.out, "warning: %v\n", err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		a.view = viewLogin
		return
	}

	a.enterList(identity)
}

func (a *app) enterList(identity quiz.Identity) {
	a.identity = identity
	a.cfg.Backend.SetToken(identity.Token)
	a.view = viewList
	fmt.Fprintf(a.out, "Welcome, %s.\n", identity.DisplayName())
	if err := a.refreshList(); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
}

func (a *app) loginCommand(command string, args []string) error {
	if command != "login" {
		return errUnknownCommand
	}
	if len(args) != 2 {
		return errors.New("usage: login <email>")
	}

	password, err := a.readPassword()
	if err != nil {
		return err
	}
	credentials := quiz.Credentials{Email: strings.TrimSpace(args[1]), Password: password}
	if err := validator.Struct(credentials); err != nil {
		return err
	}

	identity, err := a.cfg.Backend.Login(a.ctx, credentials)
	if err != nil {
		return describeClientError(err, a.cfg.ServerURL)
	}
	if err := a.cfg.Session.Establish(a.ctx, identity); err != nil {
		// Still usable for this run.
		a.log.Warn().Err(err).Msg("Session not persisted")
		fmt.Fprintf(a.out, "warning: %v\n", err)
	}
	a.enterList(identity)
	return nil
}

func (a *app) readPassword() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	if a.cfg.ReadPassword != nil {
		password, err := a.cfg.ReadPassword()
		fmt.Fprintln(a.out)
		return password, err
	}
	return readLine(a.reader)
}

func (a *app) listCommand(command string, args []string) error {
	switch command {
	case "list", "refresh":
		return a.refreshList()
	case "start":
		quizID, err := parseQuizID(args, "usage: start <quiz_id>")
		if err != nil {
			return err
		}
		return a.startAttempt(quizID)
	case "summary":
		quizID, err := parseQuizID(args, "usage: summary <quiz_id>")
		if err != nil {
			return err
		}
		return a.openSummary(quizID, viewList)
	case "logout":
		return a.logout()
	default:
		return errUnknownCommand
	}
}

func (a *app) refreshList() error {
	catalog, err := a.cfg.Backend.ListQuizzes(a.ctx, a.identity.StudentID)
	if err != nil {
		return describeClientError(err, a.cfg.ServerURL)
	}
	a.catalog = catalog
	fmt.Fprint(a.out, renderCatalog(catalog, a.cfg.Location))
	return nil
}

func (a *app) logout() error {
	if err := a.cfg.Session.End(a.ctx); err != nil {
		return err
	}
	a.cfg.Backend.SetToken("")
	a.identity = quiz.Identity{}
	a.catalog = quiz.Catalog{}
	a.view = viewLogin
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *app) summaryCommand(command string, args []string) error {
	switch command {
	case "show":
		fmt.Fprint(a.out, renderSummary(a.summary.summary))
		return nil
	case "export":
		return a.export(args)
	case "back":
		from := a.summary.from
		a.summary = nil
		if from == viewAttempt && a.attempt != nil {
			a.view = viewAttempt
			return nil
		}
		a.view = viewList
		return a.refreshList()
	default:
		return errUnknownCommand
	}
}

func (a *app) openSummary(quizID quiz.ID, from view) error {
	summary, err := a.cfg.Backend.GetSummary(a.ctx, quizID, a.identity.StudentID)
	if err != nil {
		return describeClientError(err, a.cfg.ServerURL)
	}
	a.summary = &summaryView{quizID: quizID, summary: summary, from: from}
	a.view = viewSummary
	fmt.Fprint(a.out, renderSummary(summary))
	return nil
}

func (a *app) export(args []string) error {
	if len(args) > 2 {
		return errors.New("usage: export [path]")
	}
	path := report.FileName(a.summary.quizID, a.summary.summary.QuizTitle)
	if len(args) == 2 {
		path = args[1]
	}
	if filepath.Base(path) == path {
		path = filepath.Join(a.cfg.ExportDir, path)
	}

	pages, err := report.ExportSummary(path, a.summary.summary, report.Options{PageSize: a.cfg.PageSize})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	a.log.Info().Str("path", path).Int("pages", pages).Msg("Summary exported")
	fmt.Fprintf(a.out, "Exported %d page(s) to %s\n", pages, path)
	return nil
}
