package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/haulman/internal/auth"
	"github.com/hitoshi/haulman/internal/metrics"
	"github.com/hitoshi/haulman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, email, secret string) (*auth.Result, error)
	Register(ctx context.Context, input auth.RegisterInput) (*auth.Result, error)
	Logout(ctx context.Context) bool
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	logins  metrics.LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。loginsはnil可（メトリクス無効時）。
func NewAuthHandler(service AuthServiceInterface, logins metrics.LoginRecorder) *AuthHandler {
	return &AuthHandler{service: service, logins: logins}
}

// loginRequest はログインのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerRequest は従業員登録のリクエストボディ。
type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Age        *int   `json:"age,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// authResponse は認証成功時のレスポンスボディ。
type authResponse struct {
	Token  string         `json:"token"`
	Person personResponse `json:"person"`
}

// Login はPOST /auth/loginを処理する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("email and password are required"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLogin(false)
		handleServiceError(w, err)
		return
	}

	h.recordLogin(true)
	writeJSON(w, http.StatusOK, authResponse{
		Token:  result.Token,
		Person: toPersonResponse(&result.Person),
	})
}

// Register はPOST /auth/registerを処理する。
// 登録成功時はそのままログイン済みとしてトークンを返す。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("name, email and password are required"))
		return
	}

	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleEmployee
	}
	if !role.Valid() {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("unknown role: "+req.Role))
		return
	}

	result, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Secret:     req.Password,
		Age:        req.Age,
		Role:       role,
		Department: req.Department,
		Phone:      req.Phone,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:  result.Token,
		Person: toPersonResponse(&result.Person),
	})
}

// Logout はPOST /auth/logoutを処理する。
// サーバー側の状態を持たないため常に成功を返す。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ok := h.service.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

func (h *AuthHandler) recordLogin(success bool) {
	if h.logins == nil {
		return
	}
	if success {
		h.logins.RecordLoginSuccess()
	} else {
		h.logins.RecordLoginFailure()
	}
}
