package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nautia-api/internal/domain"
	"nautia-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*domain.Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*domain.Appointment)}
}

func (m *mockAppointmentRepo) Create(ctx context.Context, appointment *domain.Appointment) error {
	m.appointments[appointment.ID] = appointment
	return nil
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	appointment, exists := m.appointments[id]
	if !exists {
		return repository.ErrAppointmentNotFound
	}
	appointment.Status = status
	return nil
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.appointments[id]; !exists {
		return repository.ErrAppointmentNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockAppointmentRepo) List(ctx context.Context) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, appointment := range m.appointments {
		out = append(out, appointment)
	}
	return out, nil
}

func (m *mockAppointmentRepo) Count(ctx context.Context) (int, error) {
	return len(m.appointments), nil
}

func appointmentRouter(repo *mockAppointmentRepo) *chi.Mux {
	handler := NewAppointmentHandler(repo, zap.NewNop())
	return newTestRouter(handler.RegisterRoutes)
}

func validAppointmentBody() []byte {
	body, _ := json.Marshal(map[string]string{
		"customer_name": "Maria Santos",
		"email":         "maria@example.com",
		"phone":         "+244 923 000 000",
		"service_type":  "Instalação de radar",
		"location":      "Porto de Luanda",
		"date":          "2026-09-15",
		"time":          "10:00",
	})
	return body
}

// Public booking always creates the appointment pending, whatever the
// client claims.
func TestAppointmentCreate_AlwaysStartsPending(t *testing.T) {
	repo := newMockAppointmentRepo()
	router := appointmentRouter(repo)

	req := httptest.NewRequest("POST", "/api/appointments", bytes.NewReader(validAppointmentBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created domain.Appointment
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode appointment: %v", err)
	}
	if created.Status != domain.AppointmentPending {
		t.Errorf("expected pending status, got %s", created.Status)
	}
}

func TestAppointmentCreate_ClientStatusIgnored(t *testing.T) {
	repo := newMockAppointmentRepo()
	router := appointmentRouter(repo)

	body, _ := json.Marshal(map[string]string{
		"customer_name": "Maria Santos",
		"email":         "maria@example.com",
		"phone":         "+244 923 000 000",
		"service_type":  "Instalação",
		"location":      "Luanda",
		"date":          "2026-09-15",
		"time":          "10:00",
		"status":        "confirmed",
	})
	req := httptest.NewRequest("POST", "/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	for _, appointment := range repo.appointments {
		if appointment.Status != domain.AppointmentPending {
			t.Errorf("client-supplied status leaked through: %s", appointment.Status)
		}
	}
}

func TestAppointmentCreate_BadDateRejected(t *testing.T) {
	router := appointmentRouter(newMockAppointmentRepo())

	body, _ := json.Marshal(map[string]string{
		"customer_name": "Maria Santos",
		"email":         "maria@example.com",
		"phone":         "+244 923 000 000",
		"service_type":  "Instalação",
		"location":      "Luanda",
		"date":          "15/09/2026",
		"time":          "10:00",
	})
	req := httptest.NewRequest("POST", "/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-ISO date, got %d", w.Code)
	}
}

func TestAppointmentStatusUpdate_Lifecycle(t *testing.T) {
	repo := newMockAppointmentRepo()
	appointment := &domain.Appointment{
		ID: uuid.New(), CustomerName: "Maria", Status: domain.AppointmentPending, CreatedAt: time.Now(),
	}
	repo.Create(context.Background(), appointment)
	router := appointmentRouter(repo)

	body, _ := json.Marshal(map[string]string{"status": "confirmed"})
	req := httptest.NewRequest("PATCH", "/api/admin/appointments/"+appointment.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, testAdminEmail))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if appointment.Status != domain.AppointmentConfirmed {
		t.Errorf("expected confirmed, got %s", appointment.Status)
	}
}

// Every admin appointment operation sits behind the same gate with the
// same 401/403 split.
func TestProperty_AppointmentAdminSurfaceIsGated(t *testing.T) {
	properties := gopter.NewProperties(nil)

	repo := newMockAppointmentRepo()
	appointment := &domain.Appointment{
		ID: uuid.New(), CustomerName: "Maria", Status: domain.AppointmentPending, CreatedAt: time.Now(),
	}
	repo.Create(context.Background(), appointment)
	router := appointmentRouter(repo)

	statusBody, _ := json.Marshal(map[string]string{"status": "confirmed"})
	requests := map[string]func() *http.Request{
		"list": func() *http.Request {
			return httptest.NewRequest("GET", "/api/admin/appointments", nil)
		},
		"status": func() *http.Request {
			r := httptest.NewRequest("PATCH", "/api/admin/appointments/"+appointment.ID.String()+"/status", bytes.NewReader(statusBody))
			r.Header.Set("Content-Type", "application/json")
			return r
		},
		"delete": func() *http.Request {
			return httptest.NewRequest("DELETE", "/api/admin/appointments/"+uuid.NewString(), nil)
		},
	}

	properties.Property("anonymous callers get 401, non-admins 403", prop.ForAll(
		func(operation string, anonymous bool) bool {
			req := requests[operation]()
			if !anonymous {
				req.Header.Set("Authorization", bearerToken(t, "visitor@example.com"))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if anonymous {
				return w.Code == http.StatusUnauthorized
			}
			return w.Code == http.StatusForbidden
		},
		gen.OneConstOf("list", "status", "delete"),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAppointmentStatusUpdate_InvalidStatusRejected(t *testing.T) {
	repo := newMockAppointmentRepo()
	appointment := &domain.Appointment{ID: uuid.New(), Status: domain.AppointmentPending, CreatedAt: time.Now()}
	repo.Create(context.Background(), appointment)
	router := appointmentRouter(repo)

	body, _ := json.Marshal(map[string]string{"status": "shipped"})
	req := httptest.NewRequest("PATCH", "/api/admin/appointments/"+appointment.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, testAdminEmail))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestAppointmentStatusUpdate_AcceptsEveryKnownStatus(t *testing.T) {
	statuses := []string{
		domain.AppointmentPending,
		domain.AppointmentConfirmed,
		domain.AppointmentCompleted,
		domain.AppointmentCancelled,
	}

	for _, status := range statuses {
		repo := newMockAppointmentRepo()
		appointment := &domain.Appointment{ID: uuid.New(), Status: domain.AppointmentPending, CreatedAt: time.Now()}
		repo.Create(context.Background(), appointment)
		router := appointmentRouter(repo)

		body, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest("PATCH", "/api/admin/appointments/"+appointment.ID.String()+"/status", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", bearerToken(t, testAdminEmail))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200 for status %q, got %d", status, w.Code)
		}
		if appointment.Status != status {
			t.Errorf("expected stored status %q, got %q", status, appointment.Status)
		}
	}
}

func TestAppointmentStatusUpdate_MissingIDIs404(t *testing.T) {
	router := appointmentRouter(newMockAppointmentRepo())

	body, _ := json.Marshal(map[string]string{"status": "confirmed"})
	req := httptest.NewRequest("PATCH", "/api/admin/appointments/"+uuid.NewString()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, testAdminEmail))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown appointment, got %d", w.Code)
	}
}
