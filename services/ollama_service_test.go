package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sahilsama/calmi/config"
	"github.com/sahilsama/calmi/models"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		OllamaBaseURL:  baseURL,
		OllamaModel:    "test-model",
		Timeout:        2 * time.Second,
		NumPredictChat: 250,
		NumPredictJSON: 400,
	}
}

func TestRenderTranscriptOrderAndLabels(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleAssistant, Content: "Hello"},
	}

	transcript := RenderTranscript(history)
	if transcript != "User: Hi\nAssistant: Hello\n" {
		t.Fatalf("unexpected transcript: %q", transcript)
	}
}

func TestBuildPromptLayout(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleAssistant, Content: "Hello"},
	}

	prompt := BuildPrompt("SYSTEM", history, "How are you?")

	if !strings.Contains(prompt, "System Prompt\n-------------\nSYSTEM") {
		t.Error("expected system prompt block")
	}
	if !strings.Contains(prompt, "Conversation History\n-------------\nUser: Hi\nAssistant: Hello\n") {
		t.Error("expected transcript block in chronological order")
	}
	if !strings.Contains(prompt, "New User Message\n-------------\nUser: How are you?") {
		t.Error("expected new message block")
	}
	if !strings.HasSuffix(prompt, "Assistant:") {
		t.Error("expected Assistant continuation cue at the end")
	}
}

func TestOllamaGatewayReturnsTrimmedText(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "  hello there \n"}`))
	}))
	defer server.Close()

	gateway := NewOllamaGateway(testConfig(server.URL))
	result := gateway.GenerateReply("SYSTEM", nil, "hi", false)

	if !result.OK() {
		t.Fatalf("expected success, got failure %q: %v", result.Failure, result.Err)
	}
	if result.Text != "hello there" {
		t.Errorf("expected trimmed reply, got %q", result.Text)
	}

	if captured["model"] != "test-model" {
		t.Errorf("expected model test-model, got %v", captured["model"])
	}
	if captured["stream"] != false {
		t.Error("expected stream: false")
	}
	options, _ := captured["options"].(map[string]interface{})
	if options["temperature"] != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", options["temperature"])
	}
	if options["num_predict"] != float64(250) {
		t.Errorf("expected num_predict 250, got %v", options["num_predict"])
	}
	if _, ok := captured["format"]; ok {
		t.Error("did not expect format constraint outside JSON mode")
	}
}

func TestOllamaGatewayJSONMode(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"response": "{\"items\": []}"}`))
	}))
	defer server.Close()

	gateway := NewOllamaGateway(testConfig(server.URL))
	result := gateway.GenerateReply("SYSTEM", nil, "recommend", true)

	if !result.OK() {
		t.Fatalf("expected success, got failure %q", result.Failure)
	}
	if captured["format"] != "json" {
		t.Errorf("expected format json, got %v", captured["format"])
	}
	options, _ := captured["options"].(map[string]interface{})
	if options["temperature"] != 0.3 {
		t.Errorf("expected temperature 0.3 in JSON mode, got %v", options["temperature"])
	}
	if options["num_predict"] != float64(400) {
		t.Errorf("expected num_predict 400 in JSON mode, got %v", options["num_predict"])
	}
}

func TestOllamaGatewayBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer server.Close()

	gateway := NewOllamaGateway(testConfig(server.URL))
	result := gateway.GenerateReply("SYSTEM", nil, "hi", false)

	if result.OK() {
		t.Fatal("expected failure for non-200 status")
	}
	if result.Failure != FailureBadStatus {
		t.Errorf("expected bad_status, got %q", result.Failure)
	}
}

func TestOllamaGatewayConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gateway := NewOllamaGateway(testConfig(url))
	result := gateway.GenerateReply("SYSTEM", nil, "hi", false)

	if result.OK() {
		t.Fatal("expected failure for unreachable endpoint")
	}
	if result.Failure != FailureConnection {
		t.Errorf("expected connection failure, got %q", result.Failure)
	}
}

func TestOllamaGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"response": "too late"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond

	gateway := NewOllamaGateway(cfg)
	result := gateway.GenerateReply("SYSTEM", nil, "hi", false)

	if result.OK() {
		t.Fatal("expected failure for slow endpoint")
	}
	if result.Failure != FailureTimeout {
		t.Errorf("expected timeout failure, got %q", result.Failure)
	}
}

func TestOllamaGatewayMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not json"))
	}))
	defer server.Close()

	gateway := NewOllamaGateway(testConfig(server.URL))
	result := gateway.GenerateReply("SYSTEM", nil, "hi", false)

	if result.OK() {
		t.Fatal("expected failure for malformed body")
	}
	if result.Failure != FailureMalformed {
		t.Errorf("expected malformed_body, got %q", result.Failure)
	}
}
