package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vedran77/syncspace/internal/domain"
)

const (
	MaxRoomNameLength     = 100
	MaxMessageLength      = 4000
	MaxNotificationLength = 500
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Error lets ValidationErrors travel as an error through service calls.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when there is nothing to report.
func (v ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notification_type", func(fl validator.FieldLevel) bool {
		return domain.NotificationType(fl.Field().String()).Valid()
	})
	return v
}

type roomInput struct {
	Name string `validate:"required,max=100"`
}

type messageInput struct {
	Content string `validate:"required,max=4000"`
}

type notificationInput struct {
	Message string `validate:"required,max=500"`
	Type    string `validate:"notification_type"`
}

func ValidateRoom(name string) ValidationErrors {
	return check(roomInput{Name: strings.TrimSpace(name)}, map[string]string{
		"Name.required": "Room name is required",
		"Name.max":      fmt.Sprintf("Room name is too long (max %d characters)", MaxRoomNameLength),
	})
}

func ValidateMessage(content string) ValidationErrors {
	return check(messageInput{Content: strings.TrimSpace(content)}, map[string]string{
		"Content.required": "Message content is required",
		"Content.max":      fmt.Sprintf("Message is too long (max %d characters)", MaxMessageLength),
	})
}

func ValidateNotification(message string, t domain.NotificationType) ValidationErrors {
	return check(notificationInput{Message: strings.TrimSpace(message), Type: string(t)}, map[string]string{
		"Message.required":       "Notification message is required",
		"Message.max":            fmt.Sprintf("Notification message is too long (max %d characters)", MaxNotificationLength),
		"Type.notification_type": "Unknown notification type",
	})
}

// check runs struct validation and maps each failed "Field.tag" to a
// user facing message keyed by the lower-cased field name.
func check(input any, messages map[string]string) ValidationErrors {
	errs := make(ValidationErrors)

	err := validate.Struct(input)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("_", err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		errs.Add(field, msg)
	}
	return errs
}
