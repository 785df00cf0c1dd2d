package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "dummy",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestClientCompleteReturnsContent(t *testing.T) {
	t.Parallel()
	var captured chatRequest
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer dummy" {
			t.Fatalf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"{\"actions\":[]}"}}]}`), nil
	})

	text, err := client.Complete(context.Background(), Messages{System: "sys", User: "usr"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != `{"actions":[]}` {
		t.Fatalf("text = %q", text)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("response_format = %+v, want json_object", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v, want exactly system then user", captured.Messages)
	}
	if captured.Messages[0].Content != "sys" || captured.Messages[1].Content != "usr" {
		t.Fatalf("message contents = %+v", captured.Messages)
	}
}

func TestClientCompleteFailures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		rt     roundTripFunc
		reason string
	}{
		{
			name: "transport error",
			rt: func(r *http.Request) (*http.Response, error) {
				return nil, errors.New("boom")
			},
			reason: "http_request",
		},
		{
			name: "provider status",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{}`), nil
			},
			reason: "http_429",
		},
		{
			name: "no choices",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"choices":[]}`), nil
			},
			reason: "empty_choices",
		},
		{
			name: "empty content",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`), nil
			},
			reason: "empty_response",
		},
		{
			name: "invalid body",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `nope`), nil
			},
			reason: "decode_response",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, tc.rt)
			_, err := client.Complete(context.Background(), Messages{System: "s", User: "u"})
			var completionErr *CompletionError
			if !errors.As(err, &completionErr) {
				t.Fatalf("error = %v, want CompletionError", err)
			}
			if completionErr.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", completionErr.Reason, tc.reason)
			}
		})
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("NewClient accepted empty api key")
	}
}

func TestNormalizeModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		input  string
		model  string
		reason string
	}{
		{name: "exact_default", input: "gpt-4o-mini", model: "gpt-4o-mini", reason: ""},
		{name: "exact_cheap", input: "gpt-3.5-turbo", model: "gpt-3.5-turbo", reason: ""},
		{name: "alias_short", input: "gpt-3.5", model: "gpt-3.5-turbo", reason: "alias"},
		{name: "alias_spacing", input: "GPT 4o Mini", model: "gpt-4o-mini", reason: ""},
		{name: "unsupported", input: "gpt-9", model: "gpt-4o-mini", reason: "defaulted"},
		{name: "empty", input: "", model: "gpt-4o-mini", reason: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotModel, gotReason := normalizeModel(tc.input)
			if gotModel != tc.model {
				t.Fatalf("model = %q, want %q", gotModel, tc.model)
			}
			if gotReason != tc.reason {
				t.Fatalf("reason = %q, want %q", gotReason, tc.reason)
			}
		})
	}
}
