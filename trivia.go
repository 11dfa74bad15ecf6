package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrUnknownTopic        = errors.New("unknown trivia topic")
	ErrProviderUnavailable = errors.New("trivia provider unavailable")
)

// triviaCategories maps a topic name to the provider's category code. The
// mapping is total: topics outside this table are an error, never a silent
// default.
var triviaCategories = map[string]int{
	"geography": 22,
	"general":   9,
}

// Question is a single multiple-choice question as returned by the
// provider.
type Question struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
}

type triviaResponse struct {
	ResponseCode int        `json:"response_code"`
	Results      []Question `json:"results"`
}

// TriviaClient fetches questions from an opentdb-compatible provider.
type TriviaClient struct {
	baseURL string
	client  *http.Client
}

func newTriviaClient(baseURL string, timeout time.Duration) *TriviaClient {
	return &TriviaClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchQuestion requests one medium-difficulty multiple-choice question for
// the given topic.
func (t *TriviaClient) FetchQuestion(ctx context.Context, topic string) (*Question, error) {
	code, ok := triviaCategories[topic]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	params := url.Values{}
	params.Set("amount", "1")
	params.Set("category", strconv.Itoa(code))
	params.Set("difficulty", "medium")
	params.Set("type", "multiple")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var body triviaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("%w: empty result set", ErrProviderUnavailable)
	}

	return &body.Results[0], nil
}
