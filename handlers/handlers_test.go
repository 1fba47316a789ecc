package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/services/booking"
	"mindbloom/templates"
	"mindbloom/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBackend stands in for the PHMS client.
type fakeBackend struct {
	mu sync.Mutex

	slots      []models.Slot
	appts      []models.Appointment
	bookSlotID int64
	booked     *models.Appointment
	err        error
	slotsErr   error

	bookSlotCalls int
	canceled      []int64
	registered    []models.SignupRequest
	loginToken    string
}

func (f *fakeBackend) Slots(context.Context, string) ([]models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slotsErr != nil {
		return nil, f.slotsErr
	}
	return append([]models.Slot(nil), f.slots...), nil
}

func (f *fakeBackend) BookSlot(context.Context, string, models.SlotBookRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookSlotCalls++
	if f.err != nil {
		return 0, f.err
	}
	return f.bookSlotID, nil
}

func (f *fakeBackend) BookAppointment(_ context.Context, _ string, req models.AppointmentBookRequest) (*models.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	appt := *f.booked
	return &appt, nil
}

func (f *fakeBackend) CancelAppointment(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.canceled = append(f.canceled, id)
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts[i].Status = models.StatusCanceled
		}
	}
	return nil
}

func (f *fakeBackend) RescheduleAppointment(context.Context, string, int64, models.RescheduleRequest) error {
	return f.err
}

func (f *fakeBackend) Appointments(context.Context, string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Appointment(nil), f.appts...), nil
}

func (f *fakeBackend) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResponse{Token: f.loginToken, Message: "Login successful"}, nil
}

func (f *fakeBackend) Register(_ context.Context, req models.SignupRequest) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, req)
	return nil
}

type recordingScheduler struct {
	mu        sync.Mutex
	calls     []string
	withdrawn []int64
}

func (s *recordingScheduler) ScheduleReminder(_ context.Context, userKey string, appt models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, userKey)
	return nil
}

func (s *recordingScheduler) CancelReminder(_ context.Context, appointmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawn = append(s.withdrawn, appointmentID)
	return nil
}

func testToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    7,
		"email": "jane@example.com",
		"name":  "Jane",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

type testEnv struct {
	router  *gin.Engine
	session *utils.WebSession
	flows   *booking.FlowStore
	redis   *redis.Client
}

// newTestEnv builds a router whose every request runs as session.
func newTestEnv(t *testing.T, loggedIn bool) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	session := &utils.WebSession{ID: "sid-1"}
	if loggedIn {
		session.Login(testToken(t))
	}

	tmpl, err := templates.Load()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.RequestLogger(zap.NewNop()))
	r.Use(func(c *gin.Context) {
		middleware.SetSession(c, session)
	})
	return &testEnv{
		router:  r,
		session: session,
		flows:   booking.NewFlowStore(client, time.Hour),
		redis:   client,
	}
}

func (e *testEnv) do(method, path string, form url.Values, asJSON bool) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// send posts a raw body with the given content type.
func (e *testEnv) send(path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) flow(t *testing.T) booking.State {
	t.Helper()
	state, err := e.flows.Load(context.Background(), e.session.ID)
	require.NoError(t, err)
	return state
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) booking.State {
	t.Helper()
	var state booking.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}
