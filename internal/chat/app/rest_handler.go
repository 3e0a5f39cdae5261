package app

import (
	"errors"
	"fmt"
	"strconv"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// APIResponse body of every REST response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// ChatRestHandler read-only REST surface
type ChatRestHandler struct {
	conversationUC *ConversationUseCase
	validate       *validator.Validate
}

// NewChatRestHandler create ChatRestHandler
func NewChatRestHandler(conversationUC *ConversationUseCase) *ChatRestHandler {
	return &ChatRestHandler{
		conversationUC: conversationUC,
		validate:       validator.New(),
	}
}

func (h *ChatRestHandler) parseQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return err
	}
	return h.validate.Struct(out)
}

func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, msg = fiber.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrValidation):
		status, msg = fiber.StatusBadRequest, err.Error()
	}
	return c.Status(status).JSON(APIResponse{Success: false, Message: msg})
}

func badRequest(c *fiber.Ctx, err error) error {
	logger.Log.Debug("bad request", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(APIResponse{Success: false, Message: "invalid paging parameters"})
}

// ListPeers all members except the caller
// @Summary List peers
// @Description Every member except the caller, online members first
// @Tags Chat
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit (max 200)"
// @Success 200 {object} APIResponse{data=[]domain.UserProfile}
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /users [get]
func (h *ChatRestHandler) ListPeers(c *fiber.Ctx) error {
	var page domain.Page
	if err := h.parseQuery(c, &page); err != nil {
		return badRequest(c, err)
	}

	peers, err := h.conversationUC.ListPeers(c.UserContext(), middlewares.MemberID(c), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(APIResponse{Success: true, Data: peers, Message: "Users fetched successfully"})
}

// ListConversations conversations of the caller with their last message
// @Summary List conversations
// @Description One entry per counterpart, newest conversation first
// @Tags Chat
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit (max 200)"
// @Success 200 {object} APIResponse{data=[]domain.ConversationSummary}
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /conversations [get]
func (h *ChatRestHandler) ListConversations(c *fiber.Ctx) error {
	var page domain.Page
	if err := h.parseQuery(c, &page); err != nil {
		return badRequest(c, err)
	}

	conversations, err := h.conversationUC.ListConversations(c.UserContext(), middlewares.MemberID(c), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(APIResponse{Success: true, Data: conversations, Message: "Conversations fetched successfully"})
}

// ListMessages history between the caller and userId
// @Summary List messages
// @Description Messages with a counterpart, oldest first; before pages back by seq
// @Tags Chat
// @Produce json
// @Param userId path string true "Counterpart member id"
// @Param limit query int false "Limit (default 50, max 200)"
// @Param before query int false "Only messages with seq lower than this"
// @Success 200 {object} APIResponse{data=[]domain.MessageView}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /conversations/{userId}/messages [get]
func (h *ChatRestHandler) ListMessages(c *fiber.Ctx) error {
	var q domain.HistoryQuery
	if err := h.parseQuery(c, &q); err != nil {
		return badRequest(c, err)
	}

	messages, err := h.conversationUC.ListMessages(c.UserContext(), middlewares.MemberID(c), c.Params("userId"), q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(APIResponse{Success: true, Data: messages, Message: "Messages fetched successfully"})
}

// ConnectCheck check chat service is up
// @Summary Check chat service status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "chat service start!"
// @Router / [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("chat service start!")
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	statusStr := c.Query("status")
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.Info("debug", zap.Bool("status", status))
	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}
