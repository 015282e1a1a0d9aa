package rest

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fluttalk/fluttalk-server/internal/domain"
	"github.com/fluttalk/fluttalk-server/internal/present/rest/presenter"
	"github.com/fluttalk/fluttalk-server/internal/usecase"
)

type Handler struct {
	chat    *usecase.ChatUsecase
	message *usecase.MessageUsecase
	token   *usecase.TokenUsecase
	user    *usecase.UserUsecase
}

func NewHandler(
	chat *usecase.ChatUsecase,
	message *usecase.MessageUsecase,
	token *usecase.TokenUsecase,
	user *usecase.UserUsecase,
) *Handler {
	return &Handler{
		chat:    chat,
		message: message,
		token:   token,
		user:    user,
	}
}

// RegisterRoutes mounts every endpoint behind the auth middleware.
func (h *Handler) RegisterRoutes(e *echo.Echo, requireIdentity echo.MiddlewareFunc) {
	g := e.Group("", requireIdentity)
	g.GET("/chats", h.handleGetChats)
	g.POST("/chats", h.handlePostChats)
	g.GET("/messages", h.handleGetMessages)
	g.GET("/messages/latest", h.handleGetLatestMessages)
	g.POST("/messages", h.handlePostMessage)
	g.POST("/pushTokens", h.handlePostPushTokens)
	g.GET("/users/me", h.handleGetMe)
	g.PUT("/users/me", h.handlePutMe)
	g.GET("/friends", h.handleGetFriends)
	g.POST("/friends", h.handlePostFriends)
	g.DELETE("/friends", h.handleDeleteFriends)
}

// requesterUID pulls the authenticated caller out of the request context.
func requesterUID(c echo.Context) (string, bool) {
	uid, ok := c.Request().Context().Value(domain.RequesterUIDCtxKey).(string)
	return uid, ok && uid != ""
}

func (h *Handler) handleGetChats(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	page, err := h.chat.ListPage(ctx, uid, c.QueryParam("startAt"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, page)
}

func (h *Handler) handlePostChats(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	var body struct {
		Email string `json:"email"`
		Title string `json:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if body.Email == "" {
		return presenter.BadRequestMessage(c, "email of the user to chat with is required")
	}
	if body.Title == "" {
		return presenter.BadRequestMessage(c, "chat title is required")
	}

	chat, err := h.chat.Create(ctx, uid, body.Email, body.Title)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"result": chat})
}

func (h *Handler) handleGetMessages(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	chatID := c.QueryParam("chatId")
	if chatID == "" {
		return presenter.BadRequestMessage(c, "chatId is required")
	}

	page, err := h.message.ListPage(ctx, uid, chatID, c.QueryParam("startAt"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, page)
}

func (h *Handler) handleGetLatestMessages(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	chatID := c.QueryParam("chatId")
	if chatID == "" {
		return presenter.BadRequestMessage(c, "chatId is required")
	}
	lastNewest := c.QueryParam("lastNewestSentAt")
	if lastNewest == "" {
		return presenter.BadRequestMessage(c, "lastNewestSentAt is required")
	}
	watermark, err := strconv.ParseInt(lastNewest, 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "lastNewestSentAt must be a unix millisecond timestamp")
	}

	messages, err := h.message.ListSince(ctx, uid, chatID, watermark)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"results": messages})
}

func (h *Handler) handlePostMessage(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	var body struct {
		ChatID  string `json:"chatId"`
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if body.ChatID == "" {
		return presenter.BadRequestMessage(c, "chatId is required")
	}
	if body.Content == "" {
		return presenter.BadRequestMessage(c, "message content is required")
	}

	message, err := h.message.Send(ctx, uid, body.ChatID, body.Content)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"result": message})
}

func (h *Handler) handlePostPushTokens(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	var body struct {
		PushToken string `json:"pushToken"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if body.PushToken == "" {
		return presenter.BadRequestMessage(c, "pushToken is required")
	}

	if err := h.token.Register(ctx, uid, body.PushToken); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleGetMe(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	me, err := h.user.Me(ctx, uid)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"result": me})
}

func (h *Handler) handlePutMe(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if body.Name == "" {
		return presenter.BadRequestMessage(c, "name is required")
	}

	me, err := h.user.UpdateName(ctx, uid, body.Name)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"result": me})
}

func (h *Handler) handleGetFriends(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	friends, err := h.user.Friends(ctx, uid)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"results": friends})
}

func (h *Handler) handlePostFriends(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if body.Email == "" {
		return presenter.BadRequestMessage(c, "email of the friend to add is required")
	}

	friend, err := h.user.AddFriend(ctx, uid, body.Email)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"result": friend})
}

func (h *Handler) handleDeleteFriends(c echo.Context) error {
	ctx := c.Request().Context()
	uid, ok := requesterUID(c)
	if !ok {
		return presenter.Unauthorized(c, "unauthorized")
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	if body.Email == "" {
		return presenter.BadRequestMessage(c, "email of the friend to remove is required")
	}

	friend, err := h.user.RemoveFriend(ctx, uid, body.Email)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"result": friend})
}
