package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/fetchmixes/internal/shared"
	tu "github.com/desertthunder/fetchmixes/internal/testing"
	"golang.org/x/time/rate"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService(APIOpts{HTTPClient: customClient, UserAgent: "fetchmixes-test"})

			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
			if srv.userAgent != "fetchmixes-test" {
				t.Errorf("expected user agent to be kept, got %s", srv.userAgent)
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService(APIOpts{})

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if srv.limiter.Limit() != rate.Inf {
				t.Errorf("expected unlimited pacing, got %v", srv.limiter.Limit())
			}
		})

		t.Run("With Request Rate", func(t *testing.T) {
			srv := NewAPIService(APIOpts{RequestsPerSecond: 2})

			if srv.limiter.Limit() != rate.Limit(2) {
				t.Errorf("expected limit 2, got %v", srv.limiter.Limit())
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}
				if got := r.Header.Get("User-Agent"); got != "fetchmixes-test" {
					t.Errorf("expected user agent header, got %q", got)
				}
				if got := r.Header.Get("X-Extra"); got != "yes" {
					t.Errorf("expected caller header to be sent, got %q", got)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(APIOpts{UserAgent: "fetchmixes-test"})
			resp, err := srv.Get(context.Background(), server.URL+"/test", http.Header{"X-Extra": {"yes"}})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusOK)
				io.WriteString(w, "<html>profile</html>")
			}))
			defer server.Close()

			srv := NewAPIService(APIOpts{})
			resp, err := srv.Get(context.Background(), server.URL, nil)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response not to be JSON")
			}
			if string(resp.Body) != "<html>profile</html>" {
				t.Errorf("unexpected body %q", resp.Body)
			}
		})

		t.Run("Non-2xx Is Returned Not Raised", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			resp, err := NewAPIService(APIOpts{}).Get(context.Background(), server.URL, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() {
				t.Error("expected OK to be false for 404")
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService(APIOpts{})
			_, err := srv.Get(context.Background(), "://invalid-url", nil)

			if err == nil {
				t.Fatal("expected error for invalid URL")
			}
			if !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			srv := NewAPIService(APIOpts{HTTPClient: client})
			_, err := srv.Get(context.Background(), "http://example.com/test", nil)

			if !errors.Is(err, shared.ErrNetwork) {
				t.Fatalf("expected ErrNetwork, got %v", err)
			}
			if !strings.Contains(err.Error(), "connection failed") {
				t.Errorf("expected cause in message, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     make(http.Header),
				}, nil),
			}

			srv := NewAPIService(APIOpts{HTTPClient: client})
			_, err := srv.Get(context.Background(), "http://example.com/test", nil)

			if !errors.Is(err, shared.ErrNetwork) {
				t.Fatalf("expected ErrNetwork, got %v", err)
			}
			if !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewAPIService(APIOpts{}).Get(ctx, server.URL, nil)
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork for canceled context, got %v", err)
			}
		})

		t.Run("Response Cookies Are Preserved", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "abc"})
				w.Header().Set("X-Custom-Header", "custom-value")
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			resp, err := NewAPIService(APIOpts{}).Get(context.Background(), server.URL, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c := resp.Cookie("csrftoken"); c == nil || c.Value != "abc" {
				t.Errorf("expected csrftoken cookie abc, got %v", c)
			}
			if resp.Cookie("sessionid") != nil {
				t.Error("expected missing cookie to be nil")
			}
			if resp.Headers.Get("X-Custom-Header") != "custom-value" {
				t.Error("expected custom header to be preserved")
			}
		})
	})

	t.Run("PostJSON", func(t *testing.T) {
		t.Run("Sends Marshaled Payload", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}

				var payload map[string]any
				if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
					t.Errorf("failed to decode request body: %v", err)
				}
				if payload["id"] != "q1" {
					t.Errorf("expected id q1, got %v", payload["id"])
				}

				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, `{"ok":true}`)
			}))
			defer server.Close()

			resp, err := NewAPIService(APIOpts{}).PostJSON(context.Background(), server.URL, map[string]any{"id": "q1"}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated || !resp.IsJSON {
				t.Errorf("expected 201 JSON response, got %d json=%v", resp.StatusCode, resp.IsJSON)
			}
		})

		t.Run("Unmarshalable Payload", func(t *testing.T) {
			_, err := NewAPIService(APIOpts{}).PostJSON(context.Background(), "http://example.com", make(chan int), nil)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal payload") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewAPIService(APIOpts{HTTPClient: client}).Post(context.Background(), "http://example.com", []byte(`{}`), nil)
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})
	})

	t.Run("NewHTTPClient Has Jar", func(t *testing.T) {
		srv := NewAPIService(APIOpts{HTTPClient: NewHTTPClient(0)})
		if srv.Jar() == nil {
			t.Error("expected a cookie jar")
		}
	})
}
