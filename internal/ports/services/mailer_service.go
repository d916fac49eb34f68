package services

import "context"

// MailerService определяет интерфейс отправки уведомлений пользователям.
// Ошибки отправки не должны влиять на результат вызывающей операции.
type MailerService interface {
	SendWelcome(ctx context.Context, email, name string) error

	SendGoodbye(ctx context.Context, email, name string) error
}
