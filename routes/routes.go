package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sahilsama/calmi/controllers"
	"github.com/sahilsama/calmi/middlewares"
	"github.com/sahilsama/calmi/services"
)

func SetupRouter(store services.Store, gateway services.Gateway) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.Logger())
	r.Use(middlewares.CORS())

	sessionController := controllers.NewSessionController(store)
	chatController := controllers.NewChatController(store, gateway)
	musicController := controllers.NewMusicController(gateway)

	// 死活確認
	r.GET("/", controllers.HandleHealth)

	// セッション作成と履歴
	r.POST("/session/create", sessionController.CreateSession)
	r.GET("/session/:id/messages", sessionController.GetMessages)
	r.DELETE("/session/:id", sessionController.DeleteSession)

	// チャットメッセージ送信
	r.POST("/chat/send", chatController.SendMessage)

	// 音楽レコメンド
	r.POST("/music/recommend", musicController.Recommend)

	return r
}
