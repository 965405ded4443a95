package services

import (
	"strings"

	"github.com/sahilsama/calmi/config"
	"github.com/sahilsama/calmi/models"
)

// FailureKind は生成エンドポイント呼び出しの失敗分類
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureConnection FailureKind = "connection"
	FailureTimeout    FailureKind = "timeout"
	FailureBadStatus  FailureKind = "bad_status"
	FailureMalformed  FailureKind = "malformed_body"
)

// GenerateResult は応答テキストか分類済みの失敗のどちらかを運ぶ。
// 失敗時の代替文言はゲートウェイではなく呼び出し側（チャット/音楽）が決める
type GenerateResult struct {
	Text    string
	Failure FailureKind
	Err     error
}

func (r GenerateResult) OK() bool {
	return r.Failure == FailureNone
}

// Gateway はローカル生成エンドポイントへの非ストリーミング呼び出し
type Gateway interface {
	GenerateReply(systemPrompt string, history []models.Message, newMessage string, jsonMode bool) GenerateResult
}

// NewGateway は設定されたバックエンドのゲートウェイを返す
func NewGateway(cfg config.Config) Gateway {
	if cfg.GatewayBackend == "openai" {
		return NewOpenAIGateway(cfg)
	}
	return NewOllamaGateway(cfg)
}

// RenderTranscript は履歴を時系列のまま "User:"/"Assistant:" 行に変換する
func RenderTranscript(history []models.Message) string {
	var b strings.Builder
	for _, msg := range history {
		role := "Assistant"
		if msg.Role == models.RoleUser {
			role = "User"
		}
		b.WriteString(role + ": " + msg.Content + "\n")
	}
	return b.String()
}

// BuildPrompt はシステムプロンプト・履歴・新規メッセージを1つの平文プロンプトにする
func BuildPrompt(systemPrompt string, history []models.Message, newMessage string) string {
	var b strings.Builder
	b.WriteString("\nSystem Prompt\n")
	b.WriteString("-------------\n")
	b.WriteString(systemPrompt)
	b.WriteString("\n\nConversation History\n")
	b.WriteString("-------------\n")
	b.WriteString(RenderTranscript(history))
	b.WriteString("\nNew User Message\n")
	b.WriteString("-------------\n")
	b.WriteString("User: " + newMessage)
	b.WriteString("\n\nAssistant:")
	return b.String()
}
