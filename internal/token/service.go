// Package token は署名付きセッショントークンの発行と検証を提供する。
// トークンはステートレスで、有効性は署名と有効期限のみから導かれる。
// サーバー側にセッションテーブルは持たず、失効の仕組みも提供しない。
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/haulman/internal/model"
)

// DefaultTTL はトークンの有効期間。発行時に固定され、再発行なしでは延長できない。
const DefaultTTL = 24 * time.Hour

// Claims はセッショントークンに埋め込む識別情報を表す。
type Claims struct {
	PersonID string     `json:"person_id"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service はHMAC-SHA256でトークンを発行・検証する。
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService はServiceを生成する。
// 署名キーが空の場合はエラーを返す（プロセス設定の誤りであり、起動時に致命扱いとする）。
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Issue は従業員の識別情報を署名して返す。
func (s *Service) Issue(person *model.Person) (string, error) {
	now := time.Now()
	claims := Claims{
		PersonID: person.ID,
		Email:    person.Email,
		Role:     person.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれた識別情報を返す。
// 署名不一致・ペイロード破損・有効期限切れはいずれもInvalidTokenになる。
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// 署名アルゴリズムのすり替えを拒否する
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.NewInvalidTokenError()
	}
	if claims.PersonID == "" || !claims.Role.Valid() {
		return nil, model.NewInvalidTokenError()
	}
	return claims, nil
}
