package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testQuestionBody = `{"response_code":0,"results":[{"category":"Geography","type":"multiple","difficulty":"medium","question":"What is the capital of Australia?","correct_answer":"Canberra","incorrect_answers":["Sydney","Melbourne","Perth"]}]}`

func TestFetchQuestion(t *testing.T) {
	var gotCategory string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCategory = r.URL.Query().Get("category")
		if r.URL.Query().Get("amount") != "1" {
			t.Errorf("Expected amount=1, got %q", r.URL.Query().Get("amount"))
		}
		if r.URL.Query().Get("difficulty") != "medium" {
			t.Errorf("Expected difficulty=medium, got %q", r.URL.Query().Get("difficulty"))
		}
		if r.URL.Query().Get("type") != "multiple" {
			t.Errorf("Expected type=multiple, got %q", r.URL.Query().Get("type"))
		}
		fmt.Fprint(w, testQuestionBody)
	}))
	defer ts.Close()

	client := newTriviaClient(ts.URL, time.Second)

	q, err := client.FetchQuestion(context.Background(), "geography")
	if err != nil {
		t.Fatalf("FetchQuestion failed: %v", err)
	}

	if gotCategory != "22" {
		t.Errorf("Expected category code 22 for geography, got %q", gotCategory)
	}
	if q.CorrectAnswer != "Canberra" {
		t.Errorf("Unexpected correct answer: %q", q.CorrectAnswer)
	}
	if len(q.IncorrectAnswers) != 3 {
		t.Errorf("Expected 3 incorrect answers, got %d", len(q.IncorrectAnswers))
	}

	if _, err := client.FetchQuestion(context.Background(), "general"); err != nil {
		t.Fatalf("FetchQuestion failed: %v", err)
	}
	if gotCategory != "9" {
		t.Errorf("Expected category code 9 for general, got %q", gotCategory)
	}
}

func TestFetchQuestionUnknownTopic(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	client := newTriviaClient(ts.URL, time.Second)

	_, err := client.FetchQuestion(context.Background(), "history")
	if !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("Expected ErrUnknownTopic, got %v", err)
	}
	if requests != 0 {
		t.Errorf("Unknown topic should not reach the provider, saw %d requests", requests)
	}
}

func TestFetchQuestionProviderUnavailable(t *testing.T) {
	t.Run("HTTP Error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		client := newTriviaClient(ts.URL, time.Second)
		if _, err := client.FetchQuestion(context.Background(), "general"); !errors.Is(err, ErrProviderUnavailable) {
			t.Errorf("Expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json")
		}))
		defer ts.Close()

		client := newTriviaClient(ts.URL, time.Second)
		if _, err := client.FetchQuestion(context.Background(), "general"); !errors.Is(err, ErrProviderUnavailable) {
			t.Errorf("Expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("Empty Results", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"response_code":1,"results":[]}`)
		}))
		defer ts.Close()

		client := newTriviaClient(ts.URL, time.Second)
		if _, err := client.FetchQuestion(context.Background(), "general"); !errors.Is(err, ErrProviderUnavailable) {
			t.Errorf("Expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := newTriviaClient("http://127.0.0.1:0", time.Second)
		if _, err := client.FetchQuestion(context.Background(), "general"); !errors.Is(err, ErrProviderUnavailable) {
			t.Errorf("Expected ErrProviderUnavailable, got %v", err)
		}
	})
}
