package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ccollicutt/errprofile/pkg/aggregate"
	"github.com/ccollicutt/errprofile/pkg/analyzer"
	"github.com/ccollicutt/errprofile/pkg/config"
	"github.com/ccollicutt/errprofile/pkg/output"
)

func newTestReport() *output.Report {
	return &output.Report{
		Counts: aggregate.Snapshot{
			Hours:   map[string]int64{"14": 2},
			Minutes: map[string]int64{"07": 1, "09": 1},
			Types:   map[string]int64{"DiskFull": 2},
		},
		Summary: analyzer.Summary{
			FilesDiscovered: 2,
			FilesScanned:    2,
			ErrorLines:      2,
			Records:         2,
		},
		Metadata: output.Metadata{
			SourceDir:  "/var/log/app",
			Encoding:   "windows-1251",
			AnalyzedAt: time.Now(),
			Duration:   time.Second,
		},
	}
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType, receivedEvent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedEvent = r.Header.Get("X-Errprofile-Event")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if !resp.Success() {
		t.Fatalf("Send() failed: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if receivedContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", receivedContentType)
	}
	if receivedEvent != EventRunCompleted {
		t.Errorf("X-Errprofile-Event = %q, want %q", receivedEvent, EventRunCompleted)
	}

	var payload Payload
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload.Event != EventRunCompleted {
		t.Errorf("Event = %q, want %q", payload.Event, EventRunCompleted)
	}
	wantLines := []string{"Hour 14 errors 2", "Minute 07 errors 1", "Minute 09 errors 1", "Type DiskFull errors 2"}
	if len(payload.Lines) != len(wantLines) {
		t.Fatalf("Lines = %q, want %q", payload.Lines, wantLines)
	}
	for i := range wantLines {
		if payload.Lines[i] != wantLines[i] {
			t.Errorf("Lines[%d] = %q, want %q", i, payload.Lines[i], wantLines[i])
		}
	}
	if payload.Counts == nil || payload.Counts.Types["DiskFull"] != 2 {
		t.Errorf("Counts = %+v, want Types[DiskFull] = 2", payload.Counts)
	}
	if payload.Summary.Records != 2 {
		t.Errorf("Summary.Records = %d, want 2", payload.Summary.Records)
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:   server.URL,
		Token: "secret-token",
	})

	if !resp.Success() {
		t.Fatalf("Send() failed: %v", resp.Error)
	}
	if receivedAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want %q", receivedAuth, "Bearer secret-token")
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if resp.Success() {
		t.Error("Send() should fail on 500")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	if resp.Body != "boom" {
		t.Errorf("Body = %q, want boom", resp.Body)
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Timeout: 20 * time.Millisecond,
	})

	if resp.Success() || resp.Error == nil {
		t.Error("Send() should fail on timeout")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: "://bad"})

	if resp.Error == nil {
		t.Error("Send() should fail for an invalid URL")
	}
}

func TestShouldFire(t *testing.T) {
	withErrors := newTestReport()
	clean := &output.Report{}
	failing := &output.Report{Summary: analyzer.Summary{FilesFailed: 1}}

	tests := []struct {
		name    string
		trigger config.WebhookTrigger
		report  *output.Report
		want    bool
	}{
		{"on_errors with errors", config.WebhookTriggerOnErrors, withErrors, true},
		{"on_errors clean", config.WebhookTriggerOnErrors, clean, false},
		{"on_failures with failed file", config.WebhookTriggerOnFailures, failing, true},
		{"on_failures with only errors", config.WebhookTriggerOnFailures, withErrors, false},
		{"always clean", config.WebhookTriggerAlways, clean, true},
		{"never with errors", config.WebhookTriggerNever, withErrors, false},
		{"empty trigger with errors", "", withErrors, true},
		{"empty trigger clean", "", clean, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldFire(tt.trigger, tt.report); got != tt.want {
				t.Errorf("ShouldFire(%q) = %v, want %v", tt.trigger, got, tt.want)
			}
		})
	}
}

func TestClient_Notify(t *testing.T) {
	var hits atomic.Int32
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	hooks := []config.WebhookConfig{
		{Name: "ok", URL: ok.URL, Trigger: config.WebhookTriggerOnErrors},
		{Name: "muted", URL: ok.URL, Trigger: config.WebhookTriggerNever},
		{Name: "broken", URL: broken.URL, Trigger: config.WebhookTriggerAlways},
	}

	core, logs := observer.New(zapcore.InfoLevel)
	sent := NewClient().Notify(context.Background(), newTestReport(), hooks, zap.New(core))

	if sent != 1 {
		t.Errorf("Notify() sent = %d, want 1", sent)
	}
	if hits.Load() != 1 {
		t.Errorf("ok server hits = %d, want 1", hits.Load())
	}
	if logs.FilterMessage("webhook failed").Len() != 1 {
		t.Error("expected one logged webhook failure")
	}
	if logs.FilterMessage("webhook sent").Len() != 1 {
		t.Error("expected one logged webhook delivery")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want bool
	}{
		{"200", Response{StatusCode: 200}, true},
		{"204", Response{StatusCode: 204}, true},
		{"301", Response{StatusCode: 301}, false},
		{"404", Response{StatusCode: 404}, false},
		{"error", Response{StatusCode: 200, Error: io.ErrUnexpectedEOF}, false},
	}

	for _, tt := range tests {
		if got := tt.resp.Success(); got != tt.want {
			t.Errorf("%s: Success() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
