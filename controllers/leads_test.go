package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/khalsa-property/backend/models"
	"github.com/khalsa-property/backend/otp"
	"github.com/khalsa-property/backend/store"
)

type fakeLeadStore struct {
	mu    sync.Mutex
	leads []models.Lead
}

func (f *fakeLeadStore) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.leads {
		if f.leads[i].Email == email {
			lead := f.leads[i]
			return &lead, nil
		}
	}
	return nil, nil
}

func (f *fakeLeadStore) Insert(ctx context.Context, lead *models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.leads {
		if f.leads[i].Email == lead.Email {
			return store.ErrDuplicateEmail
		}
	}
	f.leads = append(f.leads, *lead)
	return nil
}

func (f *fakeLeadStore) ListAll(ctx context.Context) ([]models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Lead, 0, len(f.leads))
	for i := len(f.leads) - 1; i >= 0; i-- {
		out = append(out, f.leads[i])
	}
	return out, nil
}

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeSender) Send(to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (f *fakeSender) all() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmail(nil), f.sent...)
}

type leadsEnv struct {
	store    *fakeLeadStore
	registry *otp.MemoryRegistry
	sender   *fakeSender
	router   *mux.Router
}

func newLeadsEnv(t *testing.T) *leadsEnv {
	t.Helper()
	t.Setenv("LEADS_NOTIFY_EMAIL", "ops@example.com")

	env := &leadsEnv{
		store:    &fakeLeadStore{},
		registry: otp.NewMemoryRegistry(otp.DefaultTTL),
		sender:   &fakeSender{},
	}
	env.router = mux.NewRouter()
	leads := env.router.PathPrefix("/api/leads").Subrouter()
	leads.HandleFunc("/send-otp", SendOTP(env.store, env.registry, env.sender)).Methods("POST")
	leads.HandleFunc("/verify-otp", VerifyOTP(env.store, env.registry, env.sender)).Methods("POST")
	leads.HandleFunc("/all", GetLeads(env.store)).Methods("GET")
	return env
}

func (e *leadsEnv) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *leadsEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *leadsEnv) code(t *testing.T, email string) string {
	t.Helper()
	rec, ok, err := e.registry.Peek(context.Background(), email)
	require.NoError(t, err)
	require.True(t, ok)
	return rec.Code
}

func sampleForm() map[string]string {
	return map[string]string{
		"name":    "A",
		"email":   "a@x.com",
		"phone":   "123",
		"message": "hi",
		"purpose": "buy",
	}
}

func TestSendOTPCreatesPendingRecord(t *testing.T) {
	env := newLeadsEnv(t)

	rec := env.post(t, "/api/leads/send-otp", sampleForm())
	require.Equal(t, http.StatusOK, rec.Code)

	pending, ok, err := env.registry.Peek(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A", pending.Form.Name)

	sent := env.sender.all()
	require.Len(t, sent, 1)
	require.Equal(t, "a@x.com", sent[0].To)
	require.Contains(t, sent[0].HTML, pending.Code)
	require.Contains(t, sent[0].HTML, "10 minutes")
}

func TestSendOTPRejectsExistingLead(t *testing.T) {
	env := newLeadsEnv(t)
	env.store.leads = append(env.store.leads, models.Lead{
		Email: "a@x.com", Verified: true, CreatedAt: time.Now(),
	})

	rec := env.post(t, "/api/leads/send-otp", sampleForm())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Email already exists")

	_, ok, err := env.registry.Peek(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, env.sender.all())
}

func TestSendOTPRequiresContactFields(t *testing.T) {
	env := newLeadsEnv(t)
	rec := env.post(t, "/api/leads/send-otp", map[string]string{"name": "A"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyOTPPersistsLeadAndConsumesCode(t *testing.T) {
	env := newLeadsEnv(t)
	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", sampleForm()).Code)
	code := env.code(t, "a@x.com")

	rec := env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": code})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.store.leads, 1)
	lead := env.store.leads[0]
	require.Equal(t, "a@x.com", lead.Email)
	require.Equal(t, "A", lead.Name)
	require.True(t, lead.Verified)

	// OTP email, applicant confirmation, internal alert.
	sent := env.sender.all()
	require.Len(t, sent, 3)
	require.Equal(t, "a@x.com", sent[1].To)
	require.Equal(t, "ops@example.com", sent[2].To)
	require.Contains(t, sent[2].HTML, "a@x.com")

	// The code is single use: replaying it reports not-found.
	rec = env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": code})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "OTP expired or not found")
	require.Len(t, env.store.leads, 1)
}

func TestVerifyOTPWrongCodeIsRetryable(t *testing.T) {
	env := newLeadsEnv(t)
	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", sampleForm()).Code)
	code := env.code(t, "a@x.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	rec := env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": wrong})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid OTP")
	require.Empty(t, env.store.leads)

	// The pending record is untouched; the correct code still works.
	rec = env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": code})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.store.leads, 1)
}

func TestVerifyOTPUnknownEmail(t *testing.T) {
	env := newLeadsEnv(t)
	rec := env.post(t, "/api/leads/verify-otp", map[string]string{"email": "nobody@x.com", "otp": "123456"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "OTP expired or not found")
}

func TestReissueInvalidatesFirstCode(t *testing.T) {
	env := newLeadsEnv(t)

	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", sampleForm()).Code)
	first := env.code(t, "a@x.com")

	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", sampleForm()).Code)
	second := env.code(t, "a@x.com")

	if first != second {
		rec := env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": first})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, env.store.leads)
	}

	rec := env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": second})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.store.leads, 1)
}

func TestVerifyOTPDuplicateInsertLosesRace(t *testing.T) {
	env := newLeadsEnv(t)
	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", sampleForm()).Code)
	code := env.code(t, "a@x.com")

	// Another verification for the same email lands first.
	require.NoError(t, env.store.Insert(context.Background(), &models.Lead{
		Email: "a@x.com", Verified: true, CreatedAt: time.Now(),
	}))

	rec := env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": code})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Email already exists")
	require.Len(t, env.store.leads, 1)
}

func TestLeadPersistsWhenEmailDeliveryFails(t *testing.T) {
	env := newLeadsEnv(t)
	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", sampleForm()).Code)
	code := env.code(t, "a@x.com")

	env.sender.err = errors.New("smtp down")
	rec := env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": code})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.store.leads, 1)
}

func TestNotificationEmailsEscapeApplicantFields(t *testing.T) {
	env := newLeadsEnv(t)

	form := sampleForm()
	form["name"] = `<script>alert("x")</script>`
	form["message"] = "<b>bold</b>"
	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", form).Code)
	code := env.code(t, "a@x.com")
	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": code}).Code)

	for _, email := range env.sender.all() {
		require.NotContains(t, email.HTML, "<script>")
		require.NotContains(t, email.HTML, "<b>bold</b>")
	}
}

func TestListLeadsNewestFirst(t *testing.T) {
	env := newLeadsEnv(t)
	for _, email := range []string{"first@x.com", "second@x.com"} {
		form := sampleForm()
		form["email"] = email
		require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", form).Code)
		code := env.code(t, email)
		require.Equal(t, http.StatusOK, env.post(t, "/api/leads/verify-otp", map[string]string{"email": email, "otp": code}).Code)
	}

	rec := env.get(t, "/api/leads/all")
	require.Equal(t, http.StatusOK, rec.Code)

	var leads []models.Lead
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&leads))
	require.Len(t, leads, 2)
	require.Equal(t, "second@x.com", leads[0].Email)
	require.Equal(t, "first@x.com", leads[1].Email)
}

func TestEndToEndLeadCapture(t *testing.T) {
	env := newLeadsEnv(t)

	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/send-otp", sampleForm()).Code)
	code := env.code(t, "a@x.com")
	require.Equal(t, http.StatusOK, env.post(t, "/api/leads/verify-otp", map[string]string{"email": "a@x.com", "otp": code}).Code)

	rec := env.get(t, "/api/leads/all")
	require.Equal(t, http.StatusOK, rec.Code)

	var leads []models.Lead
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&leads))
	require.Len(t, leads, 1)
	require.Equal(t, "a@x.com", leads[0].Email)
	require.True(t, leads[0].Verified)
	require.True(t, strings.Contains(rec.Header().Get("Content-Type"), "application/json"))
}
