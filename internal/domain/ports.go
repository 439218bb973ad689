package domain

// Identity — личность пользователя, восстановленная из токена. Живёт один
// запрос и нигде не сохраняется.
type Identity struct {
	UserID string
}

// TokenService выпускает и разбирает подписанные пользовательские токены.
type TokenService interface {
	// Issue выпускает токен для userID. Проверки учётных данных нет:
	// вызывающему доверяют назвать правильный user_id.
	Issue(userID string) (string, error)
	// Decode проверяет подпись и возвращает вложенный user_id.
	// Возвращает ErrInvalidToken при любой проблеме разбора или подписи.
	Decode(raw string) (Identity, error)
}

// FeedPublisher добавляет событие в ленту активности пользователя во внешнем
// сервисе. Вызывается строго после коммита записи в хранилище; ошибка
// публикации никогда не откатывает запись.
type FeedPublisher interface {
	// Publish отправляет событие в персональную ленту userID.
	// Возвращает ErrFeedUnavailable при сетевой или сервисной ошибке.
	Publish(userID string, event ActivityEvent) error
}
