package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

// BearerPrefix — схема заголовка Authorization. Ровно 7 байт отрезаются
// перед разбором токена.
const BearerPrefix = "Bearer "

// Service выпускает и проверяет HMAC-подписанные (HS256) токены с user_id
// в claims. Общий секрет приходит из конфигурации процесса.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService создаёт сервис токенов. ttl=0 означает бессрочные токены —
// поведение исходной системы; положительный ttl добавляет и проверяет exp.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue выпускает токен для userID без какой-либо проверки учётных данных:
// эндпоинт — доверенная внутренняя чеканка, вызывающий сам отвечает за
// корректность user_id.
func (s *Service) Issue(userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrUserIDRequired
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
	}
	if s.ttl > 0 {
		issued := s.now().UTC()
		claims["iat"] = issued.Unix()
		claims["exp"] = issued.Add(s.ttl).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode проверяет подпись и возвращает вложенный user_id.
func (s *Service) Decode(raw string) (domain.Identity, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return domain.Identity{}, fmt.Errorf("%w: user_id claim is missing", domain.ErrInvalidToken)
	}

	return domain.Identity{UserID: userID}, nil
}

// StripBearer отрезает схему от значения заголовка Authorization.
// Содержимое префикса не сверяется — отрезаются первые 7 байт, как и в
// исходной системе; проверяется только, что значение длиннее схемы.
func StripBearer(header string) (string, error) {
	if len(header) <= len(BearerPrefix) {
		return "", domain.ErrMalformedAuthHeader
	}
	return header[len(BearerPrefix):], nil
}

var _ domain.TokenService = (*Service)(nil)
