package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/sahilsama/calmi/config"
	"github.com/sahilsama/calmi/models"
)

// FallbackReply は生成に失敗したときにチャット側が返す定型文
const FallbackReply = "I'm here, but I'm having a little trouble connecting to my thoughts. " +
	"Could you try saying that again?"

type OllamaGateway struct {
	client *resty.Client
	cfg    config.Config
}

func NewOllamaGateway(cfg config.Config) *OllamaGateway {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &OllamaGateway{
		client: client,
		cfg:    cfg,
	}
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// GenerateReply はOllamaの /api/generate に非ストリーミングで問い合わせる。
// JSONモードでは温度を下げ、出力を有効なJSONに制約する
func (g *OllamaGateway) GenerateReply(systemPrompt string, history []models.Message, newMessage string, jsonMode bool) GenerateResult {
	fullPrompt := BuildPrompt(systemPrompt, history, newMessage)

	options := map[string]interface{}{
		"temperature": 0.7,
		"num_predict": g.cfg.NumPredictChat,
	}
	requestBody := map[string]interface{}{
		"model":   g.cfg.OllamaModel,
		"prompt":  fullPrompt,
		"stream":  false,
		"options": options,
	}
	if jsonMode {
		options["temperature"] = 0.3
		options["num_predict"] = g.cfg.NumPredictJSON
		requestBody["format"] = "json"
	}

	resp, err := g.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(requestBody).
		Post(g.cfg.OllamaBaseURL + "/api/generate")

	if err != nil {
		log.Printf("Ollama error: %v", err)
		return GenerateResult{Failure: classifyTransportError(err), Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		log.Printf("Ollama returned status %d", resp.StatusCode())
		return GenerateResult{Failure: FailureBadStatus}
	}

	var result ollamaResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		log.Printf("Failed to parse Ollama response: %v", err)
		return GenerateResult{Failure: FailureMalformed, Err: err}
	}

	return GenerateResult{Text: strings.TrimSpace(result.Response)}
}

func classifyTransportError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureConnection
}
