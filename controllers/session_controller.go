package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sahilsama/calmi/models"
	"github.com/sahilsama/calmi/services"
)

type SessionController struct {
	store services.Store
}

func NewSessionController(store services.Store) *SessionController {
	return &SessionController{store: store}
}

func (sc *SessionController) CreateSession(c *gin.Context) {
	var request struct {
		Name               string `json:"name" binding:"required"`
		Identity           string `json:"identity" binding:"required"`
		AgeRange           string `json:"age_range" binding:"required"`
		RelationshipStatus string `json:"relationship_status" binding:"required"`
		SupportType        string `json:"support_type" binding:"required"`
		CommunicationType  string `json:"communication_type" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error binding session create request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "All profile fields are required"})
		return
	}

	// プロフィールからシステムプロンプトを生成。セッション作成後は再計算しない
	systemPrompt, err := services.BuildTherapistPersona(map[string]string{
		"name":                request.Name,
		"identity":            request.Identity,
		"age_range":           request.AgeRange,
		"relationship_status": request.RelationshipStatus,
		"support_type":        request.SupportType,
	})
	if err != nil {
		log.Printf("Error building persona: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := models.Session{
		ID:                 uuid.New().String(),
		Name:               request.Name,
		Identity:           request.Identity,
		AgeRange:           request.AgeRange,
		RelationshipStatus: request.RelationshipStatus,
		SupportType:        request.SupportType,
		CommunicationType:  request.CommunicationType,
		SystemPrompt:       systemPrompt,
	}

	if err := sc.store.CreateSession(&session); err != nil {
		log.Printf("Error creating session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": session.ID})
}

func (sc *SessionController) GetMessages(c *gin.Context) {
	sessionID := c.Param("id")

	if _, err := sc.store.GetSession(sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		log.Printf("Error fetching session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session"})
		return
	}

	messages, err := sc.store.ListMessages(sessionID)
	if err != nil {
		log.Printf("Error fetching messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (sc *SessionController) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	// メッセージも外部キーで連鎖削除される
	if err := sc.store.DeleteSession(sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		log.Printf("Error deleting session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}
