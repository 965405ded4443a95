package services

import (
	"errors"
	"time"

	"github.com/sahilsama/calmi/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Store はセッションとメッセージの永続化層。
// メッセージは必ず1つのセッションに属し、セッション削除で連鎖削除される
type Store interface {
	CreateSession(session *models.Session) error
	GetSession(id string) (*models.Session, error)
	SaveMessage(sessionID, role, content string) (*models.Message, error)
	// SaveExchange はユーザー発話とアシスタント応答を1トランザクションで保存する
	SaveExchange(sessionID, userContent, assistantContent string) error
	// RecentMessages は直近limit件を時系列（古い順）で返す
	RecentMessages(sessionID string, limit int) ([]models.Message, error)
	ListMessages(sessionID string) ([]models.Message, error)
	DeleteSession(id string) error
	// DeleteSessionsBefore はcutoffより古いセッションを一括削除し、件数を返す
	DeleteSessionsBefore(cutoff time.Time) (int64, error)
}
