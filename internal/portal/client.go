package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quiz-client/internal/quiz"
)

const (
	DefaultServerURL = "http://localhost:8000"
	requestIDHeader  = "X-Request-ID"
	maxErrorBody     = 64 << 10
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the quiz backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	mu    sync.RWMutex
	token string
}

type startResponse struct {
	Message string `json:"message"`
}

// errorResponse covers the error bodies the backend revisions produce.
type errorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log.With().Str("component", "portal").Logger(),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken sets the bearer token sent with every request; empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

func (c *Client) Login(ctx context.Context, credentials quiz.Credentials) (quiz.Identity, error) {
	var identity quiz.Identity
	if err := c.doJSON(ctx, http.MethodPost, "/login", credentials, &identity); err != nil {
		return quiz.Identity{}, err
	}
	if identity.StudentID.Empty() {
		return quiz.Identity{}, errors.New("login response carries no student id")
	}
	if strings.TrimSpace(identity.Email) == "" {
		identity.Email = credentials.Email
	}
	return identity, nil
}

func (c *Client) ListQuizzes(ctx context.Context, studentID quiz.ID) (quiz.Catalog, error) {
	if studentID.Empty() {
		return quiz.Catalog{}, errors.New("student_id is required")
	}

	var catalog quiz.Catalog
	if err := c.doJSON(ctx, http.MethodGet, "/list/"+escape(studentID), nil, &catalog); err != nil {
		return quiz.Catalog{}, err
	}
	for idx := range catalog.Active {
		catalog.Active[idx].Status = quiz.StatusActive
	}
	for idx := range catalog.Upcoming {
		catalog.Upcoming[idx].Status = quiz.StatusUpcoming
	}
	for idx := range catalog.Completed {
		catalog.Completed[idx].Status = quiz.StatusCompleted
	}
	return catalog, nil
}

// StartQuiz marks the attempt as started on the backend.
func (c *Client) StartQuiz(ctx context.Context, quizID, studentID quiz.ID) error {
	if quizID.Empty() || studentID.Empty() {
		return errors.New("quiz_id and student_id are required")
	}

	var payload startResponse
	path := "/start_quiz/" + escape(quizID) + "/" + escape(studentID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return err
	}
	if payload.Message != "" {
		c.log.Debug().Str("quiz_id", quizID.String()).Str("message", payload.Message).Msg("Quiz started")
	}
	return nil
}

func (c *Client) GetQuestions(ctx context.Context, quizID, studentID quiz.ID) (quiz.QuestionSet, error) {
	if quizID.Empty() || studentID.Empty() {
		return quiz.QuestionSet{}, errors.New("quiz_id and student_id are required")
	}

	var set quiz.QuestionSet
	path := "/quiz/" + escape(quizID) + "/questions/" + escape(studentID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &set); err != nil {
		return quiz.QuestionSet{}, err
	}
	set.QuizID = quizID
	return set, nil
}

func (c *Client) SubmitQuiz(ctx context.Context, submission quiz.Submission) (quiz.SubmitResult, error) {
	if submission.Answers == nil {
		submission.Answers = map[quiz.ID]string{}
	}

	var result quiz.SubmitResult
	if err := c.doJSON(ctx, http.MethodPost, "/submit_quiz", submission, &result); err != nil {
		return quiz.SubmitResult{}, err
	}
	return result, nil
}

func (c *Client) GetSummary(ctx context.Context, quizID, studentID quiz.ID) (quiz.Summary, error) {
	if quizID.Empty() || studentID.Empty() {
		return quiz.Summary{}, errors.New("quiz_id and student_id are required")
	}

	var summary quiz.Summary
	path := "/quiz/" + escape(quizID) + "/summary/" + escape(studentID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return quiz.Summary{}, err
	}
	return summary, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	request.Header.Set(requestIDHeader, requestID)
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.log.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("Request failed")
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", response.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("Request completed")

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(response)
	}

	if responseBody == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(response *http.Response) error {
	apiErr := APIError{StatusCode: response.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = firstNonEmpty(detailMessage(payload.Detail), payload.Error, payload.Message)
	}
	if apiErr.Message == "" {
		apiErr.Message = response.Status
	}
	return &apiErr
}

// detailMessage reads "detail" as a string, or the first "msg" of a validation list.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		for _, item := range items {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func escape(id quiz.ID) string {
	return url.PathEscape(id.String())
}
