package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nautia-api/internal/auth"
	"nautia-api/internal/domain"
	"nautia-api/internal/middleware"
	"nautia-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"
const testAdminEmail = "admin@nautia.pt"

// newTestRouter wires a handler the way the server does: identity
// resolution first, then the admin gate on privileged routes. Rate limiting
// is a pass-through here.
func newTestRouter(register func(r chi.Router, requireAdmin, rateLimit func(http.Handler) http.Handler)) *chi.Mux {
	logger := zap.NewNop()
	router := chi.NewRouter()
	router.Use(middleware.WithIdentity(testJWTSecret, logger))

	gate := auth.NewGate([]string{testAdminEmail})
	requireAdmin := middleware.RequireAdmin(gate, logger)
	passthrough := func(next http.Handler) http.Handler { return next }

	register(router, requireAdmin, passthrough)
	return router
}

func bearerToken(t *testing.T, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return "Bearer " + signed
}

type mockLeadRepo struct {
	leads map[uuid.UUID]*domain.Lead
}

func newMockLeadRepo() *mockLeadRepo {
	return &mockLeadRepo{leads: make(map[uuid.UUID]*domain.Lead)}
}

func (m *mockLeadRepo) Create(ctx context.Context, lead *domain.Lead) error {
	m.leads[lead.ID] = lead
	return nil
}

func (m *mockLeadRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.leads[id]; !exists {
		return repository.ErrLeadNotFound
	}
	delete(m.leads, id)
	return nil
}

func (m *mockLeadRepo) List(ctx context.Context) ([]*domain.Lead, error) {
	var out []*domain.Lead
	for _, lead := range m.leads {
		out = append(out, lead)
	}
	return out, nil
}

func (m *mockLeadRepo) Count(ctx context.Context) (int, error) {
	return len(m.leads), nil
}

func leadRouter(repo *mockLeadRepo) *chi.Mux {
	handler := NewLeadHandler(repo, zap.NewNop())
	return newTestRouter(handler.RegisterRoutes)
}

func TestLeadCreate_PublicAndAnonymous(t *testing.T) {
	repo := newMockLeadRepo()
	router := leadRouter(repo)

	body, _ := json.Marshal(map[string]string{
		"name":    "Maria Santos",
		"email":   "maria@example.com",
		"subject": "Orçamento radar",
		"message": "Preciso de um radar para embarcação de 12m",
	})
	req := httptest.NewRequest("POST", "/api/leads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for anonymous lead capture, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.leads) != 1 {
		t.Errorf("expected lead to be stored, have %d", len(repo.leads))
	}
}

func TestLeadCreate_MissingFieldsRejected(t *testing.T) {
	router := leadRouter(newMockLeadRepo())

	body, _ := json.Marshal(map[string]string{"name": "Maria"})
	req := httptest.NewRequest("POST", "/api/leads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete lead, got %d", w.Code)
	}
}

// Submitted leads are only readable behind the admin gate. Anonymous gets
// 401, a resolved non-admin identity gets 403.
func TestLeadList_AdminOnly(t *testing.T) {
	repo := newMockLeadRepo()
	repo.Create(context.Background(), &domain.Lead{
		ID: uuid.New(), Name: "Maria", Email: "maria@example.com", CreatedAt: time.Now(),
	})
	router := leadRouter(repo)

	req := httptest.NewRequest("GET", "/api/admin/leads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous list, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/admin/leads", nil)
	req.Header.Set("Authorization", bearerToken(t, "visitor@example.com"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin list, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/admin/leads", nil)
	req.Header.Set("Authorization", bearerToken(t, testAdminEmail))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for admin list, got %d", w.Code)
	}

	var leads []*domain.Lead
	if err := json.NewDecoder(w.Body).Decode(&leads); err != nil {
		t.Fatalf("failed to decode leads: %v", err)
	}
	if len(leads) != 1 {
		t.Errorf("expected 1 lead, got %d", len(leads))
	}
}

func TestLeadDelete_MissingIDIs404(t *testing.T) {
	router := leadRouter(newMockLeadRepo())

	req := httptest.NewRequest("DELETE", "/api/admin/leads/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", bearerToken(t, testAdminEmail))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting unknown lead, got %d", w.Code)
	}
}
