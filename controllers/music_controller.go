package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahilsama/calmi/services"
)

type MusicController struct {
	gateway services.Gateway
}

func NewMusicController(gateway services.Gateway) *MusicController {
	return &MusicController{gateway: gateway}
}

// Recommend は音楽レコメンドを返す。内部で何が失敗しても呼び出し側には
// 空のitemsを返すだけで、エラーにはしない
func (mc *MusicController) Recommend(c *gin.Context) {
	var request struct {
		Profile map[string]interface{} `json:"profile"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error binding music request: %v", err)
		c.JSON(http.StatusOK, gin.H{"items": []interface{}{}})
		return
	}

	normalized := services.NormalizeProfile(request.Profile)

	systemPrompt, err := services.BuildTherapistPersona(normalized)
	if err != nil {
		log.Printf("Error building persona for music: %v", err)
		c.JSON(http.StatusOK, gin.H{"items": []interface{}{}})
		return
	}

	userPrompt := services.BuildMusicPrompt(normalized)

	result := mc.gateway.GenerateReply(systemPrompt, nil, userPrompt, true)
	raw := result.Text
	if !result.OK() {
		log.Printf("Music generation failed (%s): %v", result.Failure, result.Err)
		raw = ""
	}

	items := services.ParseRecommendations(raw)
	c.JSON(http.StatusOK, gin.H{"items": services.NormalizeRecommendations(items)})
}
