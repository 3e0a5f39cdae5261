package router

import (
	"context"

	"realtime_chat_service/internal/chat/app"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册聊天相关的路由
// @title Realtime Chat Service API
// @version 1.0
// @description One-to-one messaging: peers, conversations, history. Live events go over /ws.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func RegisterRoutes(r *fiber.App, gate *app.ConnectionGate, chatWebsocket *app.ChatWebsocketHandler, chatRest *app.ChatRestHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", app.ConnectCheck)
	r.Post("/debug", app.DebugLogFlag)

	authed := r.Group("", middlewares.JWTMiddleware(gate.Admit))

	authed.Get("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))

	authed.Get("/users", chatRest.ListPeers)
	authed.Get("/conversations", chatRest.ListConversations)
	authed.Get("/conversations/:userId/messages", chatRest.ListMessages)
}
