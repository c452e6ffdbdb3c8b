// Package attempt runs one timed quiz attempt: the answer sheet, the countdown and
// the submission guard.
//
// All state is owned by a single loop goroutine (Session.Run). Ticks, answer edits,
// submit requests and network completions are serialized through it, so the guard
// check and the phase change never interleave.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quiz-client/internal/quiz"
)

const tickPeriod = time.Second

type Submitter interface {
	SubmitQuiz(ctx context.Context, submission quiz.Submission) (quiz.SubmitResult, error)
}

type Trigger int

const (
	TriggerUser Trigger = iota
	TriggerTimer
)

func (t Trigger) String() string {
	if t == TriggerTimer {
		return "timer"
	}
	return "user"
}

type NoticeKind int

const (
	NoticeTick NoticeKind = iota
	NoticeExpired
	NoticeSubmitted
	NoticeSubmitFailed
)

type Notice struct {
	Kind      NoticeKind
	Trigger   Trigger
	Remaining int
	Score     float64
	Err       error
}

type Config struct {
	StudentID quiz.ID
	Questions quiz.QuestionSet
	Submitter Submitter
	// Ticks replaces the one-second ticker when set.
	Ticks <-chan time.Time
	// Notify runs on the loop goroutine and must not call back into the Session.
	Notify func(Notice)
	Logger zerolog.Logger
}

// State is a copy of the attempt as seen by the loop at one instant.
type State struct {
	Phase        Phase
	Remaining    int
	TimerRunning bool
	Answers      map[quiz.ID]string
	Score        *float64
}

type Session struct {
	cfg      Config
	log      zerolog.Logger
	cmds     chan func(*state)
	outcomes chan outcome
	stopped  chan struct{}
}

type state struct {
	ctx       context.Context
	phase     Phase
	trigger   Trigger
	remaining int
	answers   map[quiz.ID]string
	score     *float64
	ticks     <-chan time.Time
	stopTicks func()
	waiter    chan<- submitReply
}

type outcome struct {
	result quiz.SubmitResult
	err    error
}

type submitReply struct {
	score float64
	err   error
}

func New(cfg Config) (*Session, error) {
	if cfg.Submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if cfg.Questions.QuizID.Empty() {
		return nil, errors.New("quiz id is required")
	}
	if cfg.StudentID.Empty() {
		return nil, errors.New("student id is required")
	}

	return &Session{
		cfg: cfg,
		log: cfg.Logger.With().
			Str("component", "attempt").
			Str("quiz_id", cfg.Questions.QuizID.String()).
			Logger(),
		cmds:     make(chan func(*state)),
		outcomes: make(chan outcome),
		stopped:  make(chan struct{}),
	}, nil
}

// Run owns the attempt until ctx is cancelled. It must be called exactly once.
func (s *Session) Run(ctx context.Context) {
	defer close(s.stopped)

	st := &state{
		ctx:       ctx,
		phase:     PhaseIdle,
		remaining: s.cfg.Questions.DurationSeconds(),
		answers:   make(map[quiz.ID]string),
	}
	st.ticks, st.stopTicks = s.startTicks()
	defer st.stopTimer()

	s.log.Info().Int("seconds", st.remaining).Msg("Attempt started")

	for {
		select {
		case <-ctx.Done():
			if st.waiter != nil {
				st.waiter <- submitReply{err: ErrClosed}
			}
			s.log.Info().Str("phase", st.phase.String()).Msg("Attempt closed")
			return
		case fn := <-s.cmds:
			fn(st)
		case <-st.ticks:
			s.tick(st)
		case out := <-s.outcomes:
			s.finish(st, out)
		}
	}
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.stopped
}

// Submit requests a user-triggered submission and waits for its outcome. It returns
// ErrAlreadySubmitted or ErrSubmissionInFlight without contacting the backend when
// the guard rejects the request.
func (s *Session) Submit(ctx context.Context) (float64, error) {
	reply := make(chan submitReply, 1)
	if err := s.exec(ctx, func(st *state) {
		s.begin(st, TriggerUser, reply)
	}); err != nil {
		return 0, err
	}

	select {
	case r := <-reply:
		return r.score, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Choose records option as the answer to a single-choice or true/false question.
func (s *Session) Choose(ctx context.Context, questionID quiz.ID, option string) error {
	question, err := s.lookup(questionID, option)
	if err != nil {
		return err
	}
	if question.Type.MultiSelect() {
		return ErrMultiSelect
	}

	var editErr error
	if err := s.exec(ctx, func(st *state) {
		if editErr = st.editable(); editErr == nil {
			st.answers[question.ID] = option
		}
	}); err != nil {
		return err
	}
	return editErr
}

// Toggle flips option in the selection of a multi-select question and reports
// whether it is selected afterwards.
func (s *Session) Toggle(ctx context.Context, questionID quiz.ID, option string) (bool, error) {
	question, err := s.lookup(questionID, option)
	if err != nil {
		return false, err
	}
	if !question.Type.MultiSelect() {
		return false, ErrNotMultiSelect
	}

	var (
		selected bool
		editErr  error
	)
	if err := s.exec(ctx, func(st *state) {
		if editErr = st.editable(); editErr != nil {
			return
		}
		current := st.answers[question.ID]
		selected = !IsSelected(current, option)
		encoded, toggleErr := ToggleSelection(current, option, selected)
		if toggleErr != nil {
			editErr = toggleErr
			return
		}
		st.answers[question.ID] = encoded
	}); err != nil {
		return false, err
	}
	return selected, editErr
}

func (s *Session) Clear(ctx context.Context, questionID quiz.ID) error {
	question, ok := s.cfg.Questions.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", quiz.ErrQuestionNotFound, questionID)
	}

	var editErr error
	if err := s.exec(ctx, func(st *state) {
		if editErr = st.editable(); editErr == nil {
			delete(st.answers, question.ID)
		}
	}); err != nil {
		return err
	}
	return editErr
}

func (s *Session) Snapshot(ctx context.Context) (State, error) {
	var snapshot State
	err := s.exec(ctx, func(st *state) {
		snapshot = State{
			Phase:        st.phase,
			Remaining:    st.remaining,
			TimerRunning: st.ticks != nil,
			Answers:      cloneAnswers(st.answers),
		}
		if st.score != nil {
			score := *st.score
			snapshot.Score = &score
		}
	})
	return snapshot, err
}

func (s *Session) Questions() quiz.QuestionSet {
	return s.cfg.Questions
}

func (s *Session) exec(ctx context.Context, fn func(*state)) error {
	done := make(chan struct{})
	wrapped := func(st *state) {
		fn(st)
		close(done)
	}

	select {
	case s.cmds <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}
	// The loop runs a received command to completion before selecting again.
	<-done
	return nil
}

func (s *Session) lookup(questionID quiz.ID, option string) (quiz.Question, error) {
	question, ok := s.cfg.Questions.Question(questionID)
	if !ok {
		return quiz.Question{}, fmt.Errorf("%w: %s", quiz.ErrQuestionNotFound, questionID)
	}
	if !question.HasOption(option) {
		return quiz.Question{}, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	return question, nil
}

func (s *Session) startTicks() (<-chan time.Time, func()) {
	if s.cfg.Ticks != nil {
		return s.cfg.Ticks, func() {}
	}
	ticker := time.NewTicker(tickPeriod)
	return ticker.C, ticker.Stop
}

func (s *Session) tick(st *state) {
	if st.phase == PhaseCommitted {
		st.stopTimer()
		return
	}

	if st.remaining <= 1 {
		st.stopTimer()
		st.remaining = 0
		// A user submission already in flight stands in for the timer's.
		if _, ok := Next(st.phase, EventBegin); ok {
			s.notify(Notice{Kind: NoticeExpired, Trigger: TriggerTimer})
			s.begin(st, TriggerTimer, nil)
		}
		return
	}

	st.remaining--
	s.notify(Notice{Kind: NoticeTick, Remaining: st.remaining})
}

func (s *Session) begin(st *state, trigger Trigger, reply chan<- submitReply) {
	next, ok := Next(st.phase, EventBegin)
	if !ok {
		s.log.Debug().
			Str("trigger", trigger.String()).
			Str("phase", st.phase.String()).
			Msg("Submit ignored")
		if reply != nil {
			reply <- submitReply{err: rejection(st.phase)}
		}
		return
	}

	st.phase = next
	st.trigger = trigger
	st.waiter = reply

	submission := quiz.Submission{
		QuizID:    s.cfg.Questions.QuizID,
		StudentID: s.cfg.StudentID,
		Answers:   cloneAnswers(st.answers),
	}
	s.log.Info().
		Str("trigger", trigger.String()).
		Int("answered", len(submission.Answers)).
		Msg("Submitting answers")

	ctx := st.ctx
	go func() {
		result, err := s.cfg.Submitter.SubmitQuiz(ctx, submission)
		select {
		case s.outcomes <- outcome{result: result, err: err}:
		case <-s.stopped:
		}
	}()
}

func (s *Session) finish(st *state, out outcome) {
	event := EventSucceed
	if out.err != nil {
		event = EventFail
	}
	next, ok := Next(st.phase, event)
	if !ok {
		s.log.Warn().Str("phase", st.phase.String()).Msg("Unexpected submit outcome")
		return
	}
	st.phase = next
	reply := st.waiter
	st.waiter = nil

	if out.err != nil {
		s.log.Warn().Err(out.err).Str("trigger", st.trigger.String()).Msg("Submit failed")
		s.notify(Notice{Kind: NoticeSubmitFailed, Trigger: st.trigger, Remaining: st.remaining, Err: out.err})
		if reply != nil {
			reply <- submitReply{err: out.err}
		}
		return
	}

	score := out.result.Score
	st.score = &score
	st.stopTimer()
	s.log.Info().Float64("score", score).Str("trigger", st.trigger.String()).Msg("Quiz submitted")
	s.notify(Notice{Kind: NoticeSubmitted, Trigger: st.trigger, Remaining: st.remaining, Score: score})
	if reply != nil {
		reply <- submitReply{score: score}
	}
}

func (s *Session) notify(notice Notice) {
	if s.cfg.Notify != nil {
		s.cfg.Notify(notice)
	}
}

func (st *state) editable() error {
	switch st.phase {
	case PhaseIdle:
		return nil
	case PhaseCommitted:
		return fmt.Errorf("%w: %v", ErrLocked, ErrAlreadySubmitted)
	default:
		return fmt.Errorf("%w: %v", ErrLocked, ErrSubmissionInFlight)
	}
}

func (st *state) stopTimer() {
	if st.stopTicks != nil {
		st.stopTicks()
		st.stopTicks = nil
	}
	st.ticks = nil
}

func cloneAnswers(answers map[quiz.ID]string) map[quiz.ID]string {
	cloned := make(map[quiz.ID]string, len(answers))
	for id, value := range answers {
		if strings.TrimSpace(value) == "" {
			continue
		}
		cloned[id] = value
	}
	return cloned
}
