package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedAuthHeader — заголовок Authorization отсутствует или короче схемы "Bearer ".
	ErrMalformedAuthHeader = errors.New("authorization header is missing or malformed")
	// ErrMissingAuthorization — в конверте обновления вообще нет ключа Authorization.
	// Отличается от ErrMalformedAuthHeader: значение не просто битое, его нет.
	ErrMissingAuthorization = errors.New("authorization is required")
	// ErrInvalidToken — токен не разбирается или подпись не сходится.
	ErrInvalidToken = errors.New("token is invalid")
	// ErrShipmentNotFound возвращается, если посылка не найдена в репозитории.
	ErrShipmentNotFound = errors.New("shipment not found")
	// ErrUserIDRequired — при выпуске токена не передан user_id.
	ErrUserIDRequired = errors.New("user_id is required")
	// ErrFeedUnavailable — внешний сервис ленты активности недоступен.
	ErrFeedUnavailable = errors.New("activity feed unavailable")
	// ErrStorage помечает любую ошибку чтения/записи хранилища.
	ErrStorage = errors.New("storage failure")
)

// WrapStorage оборачивает низкоуровневую ошибку хранилища, сохраняя ErrStorage
// в цепочке для errors.Is. Текст исходной ошибки наружу не отдаётся.
func WrapStorage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// IsNotFound проверяет, является ли ошибка отсутствием посылки.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShipmentNotFound)
}
