package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahilsama/calmi/services"
)

type ChatController struct {
	store   services.Store
	gateway services.Gateway
}

func NewChatController(store services.Store, gateway services.Gateway) *ChatController {
	return &ChatController{store: store, gateway: gateway}
}

// チャット履歴としてモデルに渡す直近メッセージ数
const historyLimit = 15

func (cc *ChatController) SendMessage(c *gin.Context) {
	var request struct {
		SessionID string `json:"session_id" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error binding chat request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "SessionID and Message are required"})
		return
	}

	// 安全チェック。危機キーワードがあればモデルには送らない
	if crisisReply, flagged := services.CheckSafety(request.Message); flagged {
		c.JSON(http.StatusOK, gin.H{"reply": crisisReply})
		return
	}

	session, err := cc.store.GetSession(request.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		log.Printf("Error fetching session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session"})
		return
	}

	history, err := cc.store.RecentMessages(session.ID, historyLimit)
	if err != nil {
		log.Printf("Error fetching history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	result := cc.gateway.GenerateReply(session.SystemPrompt, history, request.Message, false)
	reply := result.Text
	if !result.OK() {
		// 生成失敗はこのリクエスト内で定型文に置き換える
		log.Printf("Generation failed (%s): %v", result.Failure, result.Err)
		reply = services.FallbackReply
	}

	// ユーザー発話と応答をまとめて保存
	if err := cc.store.SaveExchange(session.ID, request.Message, reply); err != nil {
		log.Printf("Error saving messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
