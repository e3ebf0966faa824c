package response

import "github.com/gofiber/fiber/v3"

// SemanticResponse is the envelope every JSON endpoint answers with.
type SemanticResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    *PageMeta   `json:"meta,omitempty"`
}

// PageMeta describes a limit/offset window. Count is the number of items in
// this page, not the total.
type PageMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

const (
	MessageOK                  = "ok"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageUnprocessableEntity = "unprocessable entity"
	MessagePayloadTooLarge     = "payload too large"
	MessageTooManyRequests     = "too many requests"
	MessageInternalServerError = "internal server error"
	MessageError               = "error"
)

func Success(c fiber.Ctx, status int, message string, data interface{}) error {
	return write(c, status, message, data, nil)
}

func Error(c fiber.Ctx, status int, message string, data interface{}) error {
	return write(c, status, message, data, nil)
}

// Page answers 200 with items and the window they were read from.
func Page[T any](c fiber.Ctx, items []T, limit, offset int) error {
	if items == nil {
		items = []T{}
	}
	return write(c, fiber.StatusOK, MessageOK, items, &PageMeta{Limit: limit, Offset: offset, Count: len(items)})
}

func write(c fiber.Ctx, status int, message string, data interface{}, meta *PageMeta) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = DefaultMessage(status)
	}
	return c.Status(status).JSON(SemanticResponse{Status: status, Message: message, Data: data, Meta: meta})
}

// DefaultMessage is the message used when a handler leaves it empty.
func DefaultMessage(status int) string {
	switch status {
	case fiber.StatusOK, fiber.StatusCreated:
		return MessageOK
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusForbidden:
		return MessageForbidden
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusUnprocessableEntity:
		return MessageUnprocessableEntity
	case fiber.StatusRequestEntityTooLarge:
		return MessagePayloadTooLarge
	case fiber.StatusTooManyRequests:
		return MessageTooManyRequests
	}
	if status >= 500 {
		return MessageInternalServerError
	}
	return MessageError
}
