package services

import (
	"context"
	"errors"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sahilsama/calmi/config"
	"github.com/sahilsama/calmi/models"
)

// OpenAIGateway は同じローカルエンドポイントをOpenAI互換API（Ollamaの /v1）
// 経由で呼ぶバックエンド。GATEWAY_BACKEND=openai で選択する
type OpenAIGateway struct {
	client *openai.Client
	cfg    config.Config
}

func NewOpenAIGateway(cfg config.Config) *OpenAIGateway {
	clientConfig := openai.DefaultConfig("ollama")
	clientConfig.BaseURL = cfg.OllamaBaseURL + "/v1"
	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}
}

func (g *OpenAIGateway) GenerateReply(systemPrompt string, history []models.Message, newMessage string, jsonMode bool) GenerateResult {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleAssistant
		if msg.Role == models.RoleUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: newMessage})

	request := openai.ChatCompletionRequest{
		Model:       g.cfg.OllamaModel,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   g.cfg.NumPredictChat,
	}
	if jsonMode {
		request.Temperature = 0.3
		request.MaxTokens = g.cfg.NumPredictJSON
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.cfg.Timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		log.Printf("OpenAI-compatible backend error: %v", err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return GenerateResult{Failure: FailureBadStatus, Err: err}
		}
		return GenerateResult{Failure: classifyTransportError(err), Err: err}
	}

	if len(resp.Choices) == 0 {
		return GenerateResult{Failure: FailureMalformed}
	}

	return GenerateResult{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}
}
