package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/haulman/internal/auth"
	"github.com/hitoshi/haulman/internal/credential"
	"github.com/hitoshi/haulman/internal/person"
	"github.com/hitoshi/haulman/internal/shipment"
	"github.com/hitoshi/haulman/internal/store"
	"github.com/hitoshi/haulman/internal/token"
)

// newTestRouter は実コンポーネントで全経路を組み立てる。
// レート制限とメトリクスは外して認証・認可・CRUDの経路に集中する。
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	shipmentStore := store.NewMemoryShipmentStore()
	personStore := store.NewMemoryPersonStore()
	hasher := credential.NewHasher(credential.Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	tokenService, err := token.NewService("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token.NewService() error = %v", err)
	}

	authService := auth.NewService(personStore, hasher, tokenService)
	shipmentService := shipment.NewService(shipmentStore)
	personService := person.NewService(personStore)

	return NewRouter(RouterDeps{
		AuthHandler:       NewAuthHandler(authService, nil),
		ShipmentHandler:   NewShipmentHandler(shipmentService),
		PersonHandler:     NewPersonHandler(personService),
		TokenVerifier:     tokenService,
		CORSAllowedOrigin: "http://localhost:3000",
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router http.Handler, email, role string) string {
	t.Helper()
	body := `{"name":"Test User","email":"` + email + `","password":"password123","role":"` + role + `"}`
	w := doJSON(t, router, http.MethodPost, "/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body: %s", w.Code, w.Body.String())
	}
	var resp authResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid register response: %v", err)
	}
	return resp.Token
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRouter_FullShipmentLifecycle(t *testing.T) {
	router := newTestRouter(t)

	adminToken := registerAndLogin(t, router, "admin@tms.com", "ADMIN")

	// 作成
	createBody := `{"origin":"Chicago","destination":"Boston","vehicleType":"TRUCK","priority":"HIGH","driverName":"John Smith","eta":"2026-09-01T12:00:00Z","cost":1500}`
	w := doJSON(t, router, http.MethodPost, "/api/shipments", adminToken, createBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", w.Code, w.Body.String())
	}
	var created shipmentResponse
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.TrackingCode != "SH100001" {
		t.Errorf("trackingCode = %q, want SH100001", created.TrackingCode)
	}

	// 匿名でも一覧・詳細は見える
	w = doJSON(t, router, http.MethodGet, "/api/shipments", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous list status = %d", w.Code)
	}
	var list shipmentListResponse
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}

	w = doJSON(t, router, http.MethodGet, "/api/shipments/"+created.ID, "", "")
	if w.Code != http.StatusOK {
		t.Errorf("anonymous get status = %d, want 200", w.Code)
	}

	// 更新
	w = doJSON(t, router, http.MethodPut, "/api/shipments/"+created.ID, adminToken, `{"status":"IN_TRANSIT"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body: %s", w.Code, w.Body.String())
	}
	var updated shipmentResponse
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Status != "IN_TRANSIT" {
		t.Errorf("status = %q, want IN_TRANSIT", updated.Status)
	}

	// 削除
	w = doJSON(t, router, http.MethodDelete, "/api/shipments/"+created.ID, adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/shipments/"+created.ID, "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestRouter_HugePageNumberReturnsEmptyList(t *testing.T) {
	router := newTestRouter(t)

	adminToken := registerAndLogin(t, router, "pager@tms.com", "ADMIN")
	createBody := `{"origin":"A","destination":"B","vehicleType":"VAN","priority":"LOW","driverName":"X"}`
	w := doJSON(t, router, http.MethodPost, "/api/shipments", adminToken, createBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", w.Code, w.Body.String())
	}

	// 範囲外のページ番号は、どれだけ大きくても空ページとして返る
	w = doJSON(t, router, http.MethodGet, "/api/shipments?page=9223372036854775807", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var list shipmentListResponse
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Shipments) != 0 {
		t.Errorf("shipments = %d, want empty page", len(list.Shipments))
	}
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}
	if list.HasNextPage {
		t.Error("hasNextPage should be false beyond the last page")
	}
}

func TestRouter_AuthorizationBoundaries(t *testing.T) {
	router := newTestRouter(t)

	managerToken := registerAndLogin(t, router, "manager@tms.com", "MANAGER")
	employeeToken := registerAndLogin(t, router, "employee@tms.com", "EMPLOYEE")

	createBody := `{"origin":"A","destination":"B","vehicleType":"VAN","priority":"LOW","driverName":"X"}`

	// 匿名の作成は401
	w := doJSON(t, router, http.MethodPost, "/api/shipments", "", createBody)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d, want 401", w.Code)
	}

	// EMPLOYEEの作成は403
	w = doJSON(t, router, http.MethodPost, "/api/shipments", employeeToken, createBody)
	if w.Code != http.StatusForbidden {
		t.Errorf("employee create status = %d, want 403", w.Code)
	}

	// MANAGERは作成できるが削除はできない
	w = doJSON(t, router, http.MethodPost, "/api/shipments", managerToken, createBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("manager create status = %d, body: %s", w.Code, w.Body.String())
	}
	var created shipmentResponse
	json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodDelete, "/api/shipments/"+created.ID, managerToken, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("manager delete status = %d, want 403", w.Code)
	}
}

func TestRouter_InvalidBearerDegradesToAnonymous(t *testing.T) {
	router := newTestRouter(t)

	// 無効なトークンでも読み取りは通る（匿名扱い）
	w := doJSON(t, router, http.MethodGet, "/api/shipments", "garbage-token", "")
	if w.Code != http.StatusOK {
		t.Errorf("list with invalid token status = %d, want 200", w.Code)
	}

	// 書き込みは匿名扱いのため401
	createBody := `{"origin":"A","destination":"B","vehicleType":"VAN","priority":"LOW","driverName":"X"}`
	w = doJSON(t, router, http.MethodPost, "/api/shipments", "garbage-token", createBody)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("create with invalid token status = %d, want 401", w.Code)
	}
}

func TestRouter_LoginAndMe(t *testing.T) {
	router := newTestRouter(t)

	registerAndLogin(t, router, "me@tms.com", "DISPATCHER")

	// 登録済みアカウントでログインし直す
	w := doJSON(t, router, http.MethodPost, "/auth/login", "", `{"email":"me@tms.com","password":"password123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body: %s", w.Code, w.Body.String())
	}
	var loggedIn authResponse
	json.Unmarshal(w.Body.Bytes(), &loggedIn)

	// /auth/me はトークンの主体を返す
	w = doJSON(t, router, http.MethodGet, "/auth/me", loggedIn.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body: %s", w.Code, w.Body.String())
	}
	var me personResponse
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Email != "me@tms.com" {
		t.Errorf("me.email = %q, want me@tms.com", me.Email)
	}

	// 未認証の /auth/me は401
	w = doJSON(t, router, http.MethodGet, "/auth/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous me status = %d, want 401", w.Code)
	}

	// 間違ったパスワードは401で、メール不明の場合と同じコード
	w = doJSON(t, router, http.MethodPost, "/auth/login", "", `{"email":"me@tms.com","password":"wrong"}`)
	wrongPass := w.Body.String()
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/auth/login", "", `{"email":"nobody@tms.com","password":"password123"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", w.Code)
	}
	if w.Body.String() != wrongPass {
		t.Error("unknown email and wrong password responses should be identical")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/shipments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("Allow-Headers = %q, should include Authorization", got)
	}
}
