// Package auth はログイン・登録・ログアウトの認証フローを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/haulman/internal/authz"
	"github.com/hitoshi/haulman/internal/model"
)

// PersonFinder は認証サービスが必要とする従業員ストアの部分集合。
type PersonFinder interface {
	FindPersonByEmail(ctx context.Context, email string) (*model.Person, error)
	CreatePerson(ctx context.Context, draft model.PersonDraft) (*model.Person, error)
}

// CredentialHasher はパスワードのハッシュ化と照合のインターフェース。
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) (bool, error)
}

// TokenIssuer はセッショントークン発行のインターフェース。
type TokenIssuer interface {
	Issue(person *model.Person) (string, error)
}

// Result は認証成功時のレスポンスを表す。
type Result struct {
	Token  string
	Person model.Person
}

// RegisterInput は従業員の自己登録に必要な入力を表す。
type RegisterInput struct {
	Name       string
	Email      string
	Secret     string
	Age        *int
	Role       model.Role
	Department string
	Phone      string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	persons PersonFinder
	hasher  CredentialHasher
	tokens  TokenIssuer
}

// NewService はServiceを生成する。
func NewService(persons PersonFinder, hasher CredentialHasher, tokens TokenIssuer) *Service {
	return &Service{
		persons: persons,
		hasher:  hasher,
		tokens:  tokens,
	}
}

// Login はメールアドレスとパスワードを照合し、セッショントークンを発行する。
// メールアドレス不明とパスワード不一致は同じInvalidCredentialsになる（列挙防止）。
func (s *Service) Login(ctx context.Context, email, secret string) (*Result, error) {
	person, err := s.persons.FindPersonByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up person: %w", err)
	}
	if person == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Verify(secret, person.CredentialHash)
	if err != nil || !ok {
		return nil, model.NewInvalidCredentialsError()
	}

	tok, err := s.tokens.Issue(person)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("login succeeded",
		slog.String("person_id", person.ID),
		slog.String("role", string(person.Role)),
	)

	return &Result{Token: tok, Person: *person}, nil
}

// Register は従業員を新規登録し、そのままログイン状態にする。
// 登録はセルフサービス（未認証で可能）。メールアドレス重複はAlreadyExistsになる。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	if err := authz.Check(nil, authz.ActionRegisterPerson); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	person, err := s.persons.CreatePerson(ctx, model.PersonDraft{
		Name:           input.Name,
		Email:          input.Email,
		CredentialHash: hash,
		Age:            input.Age,
		Role:           input.Role,
		Department:     input.Department,
		Phone:          input.Phone,
		AttendanceLog:  []model.AttendanceRecord{},
	})
	if err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(person)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("person registered",
		slog.String("person_id", person.ID),
		slog.String("role", string(person.Role)),
	)

	return &Result{Token: tok, Person: *person}, nil
}

// Logout はステートレスなno-op。トークンはサーバー側に保持されないため、
// クライアントが自分のトークンを破棄することでセッションが終わる。
func (s *Service) Logout(ctx context.Context) bool {
	return true
}
