package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mailtriage/internal/mailbox"
	"mailtriage/internal/models"
	"mailtriage/internal/store"
)

// ReplySender sends a single plain-text reply
type ReplySender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ListMessagesHandler returns stored messages, optionally filtered by
// sentiment or priority
// @Summary List messages
// @Description List stored messages, newest first, with optional sentiment/priority filters
// @Tags messages
// @Produce json
// @Param sentiment query string false "Filter by sentiment" Enums(positive, negative, neutral)
// @Param priority query string false "Filter by priority" Enums(urgent, normal)
// @Success 200 {object} models.MessageListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.MessageListResponse
// @Router /api/messages [get]
func ListMessagesHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter := store.Filter{
			Sentiment: c.QueryParam("sentiment"),
			Priority:  c.QueryParam("priority"),
		}

		if filter.Sentiment != "" && !models.ValidSentiment(filter.Sentiment) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "invalid sentiment filter",
			})
		}
		if filter.Priority != "" && !models.ValidPriority(filter.Priority) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "invalid priority filter",
			})
		}

		messages, err := st.List(c.Request().Context(), filter)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageListResponse{
				Error: "failed to list messages",
			})
		}

		return c.JSON(http.StatusOK, models.MessageListResponse{
			Messages: messages,
			Total:    len(messages),
		})
	}
}

// GetMessageHandler returns a single message by id
// @Summary Get a message
// @Description Fetch one stored message by its provider-assigned id
// @Tags messages
// @Produce json
// @Param id path string true "Message id"
// @Success 200 {object} models.Message
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/messages/{id} [get]
func GetMessageHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		msg, err := st.Get(c.Request().Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: "message not found",
			})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: "failed to get message",
			})
		}

		return c.JSON(http.StatusOK, msg)
	}
}

// SendReplyHandler sends a reply for a stored message and marks it
// responded. The responded flag is only set after a successful send.
// @Summary Send a reply
// @Description Send a reply to the message sender (stored suggested reply when no body is given)
// @Tags messages
// @Accept json
// @Produce json
// @Param id path string true "Message id"
// @Param request body models.SendReplyRequest false "Reply override"
// @Success 200 {object} models.SendReplyResponse
// @Failure 400 {object} models.SendReplyResponse
// @Failure 404 {object} models.SendReplyResponse
// @Failure 500 {object} models.SendReplyResponse
// @Failure 503 {object} models.SendReplyResponse
// @Router /api/messages/{id}/reply [post]
func SendReplyHandler(st *store.Store, sender ReplySender) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		msg, err := st.Get(ctx, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.SendReplyResponse{
				Error: "message not found",
			})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.SendReplyResponse{
				Error: "failed to get message",
			})
		}

		var req models.SendReplyRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.SendReplyResponse{
				Error: "invalid request body",
			})
		}

		replyBody := req.Body
		if replyBody == "" {
			replyBody = msg.SuggestedReply
		}

		if err := sender.Send(ctx, msg.Sender, msg.Subject, replyBody); err != nil {
			if mailbox.IsAuthError(err) || mailbox.IsTransportError(err) {
				return c.JSON(http.StatusServiceUnavailable, models.SendReplyResponse{
					Error: "mail provider unavailable",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.SendReplyResponse{
				Error: "failed to send reply",
			})
		}

		if err := st.MarkResponded(ctx, msg.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, models.SendReplyResponse{
				Error: "reply sent but message could not be marked responded",
			})
		}

		return c.JSON(http.StatusOK, models.SendReplyResponse{
			Success: true,
			Message: "Reply sent to " + msg.Sender,
		})
	}
}
