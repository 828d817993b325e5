package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fithub-admin/internal/config"
	"fithub-admin/internal/model"
	"fithub-admin/internal/notifier"
	redisrepo "fithub-admin/internal/repository/redis"
	"fithub-admin/internal/repository/scylla"
	"fithub-admin/internal/service"
	"fithub-admin/internal/session"
	"fithub-admin/internal/token"
	"fithub-admin/internal/twofactor"
	"fithub-admin/internal/util"
)

// In-memory stand-ins for the storage layer.

type memAdminRepo struct {
	admins  map[string]*model.Admin
	byEmail map[string]string
	byPhone map[string]string
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{
		admins:  make(map[string]*model.Admin),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (m *memAdminRepo) add(a *model.Admin) {
	m.admins[a.AdminID] = a
	m.byEmail[a.Email] = a.AdminID
	if a.Phone != "" {
		m.byPhone[a.Phone] = a.AdminID
	}
}

func (m *memAdminRepo) CreateAdmin(ctx context.Context, a *model.Admin) error {
	m.add(a)
	return nil
}

func (m *memAdminRepo) GetAdminByID(ctx context.Context, id string) (*model.Admin, error) {
	a, ok := m.admins[id]
	if !ok {
		return nil, scylla.ErrAdminNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memAdminRepo) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return nil, scylla.ErrAdminNotFound
	}
	return m.GetAdminByID(ctx, id)
}

func (m *memAdminRepo) GetAdminByPhone(ctx context.Context, phone string) (*model.Admin, error) {
	id, ok := m.byPhone[phone]
	if !ok {
		return nil, scylla.ErrAdminNotFound
	}
	return m.GetAdminByID(ctx, id)
}

func (m *memAdminRepo) UpdateProfile(ctx context.Context, a *model.Admin) error {
	current, ok := m.admins[a.AdminID]
	if !ok {
		return scylla.ErrAdminNotFound
	}
	delete(m.byEmail, current.Email)
	delete(m.byPhone, current.Phone)
	copied := *a
	m.add(&copied)
	return nil
}

func (m *memAdminRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	a, ok := m.admins[id]
	if !ok {
		return scylla.ErrAdminNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (m *memAdminRepo) UpdateTwoFactor(ctx context.Context, id string, enabled bool, method string) error {
	a, ok := m.admins[id]
	if !ok {
		return scylla.ErrAdminNotFound
	}
	a.TwoFactorEnabled = enabled
	a.TwoFactorMethod = method
	return nil
}

func (m *memAdminRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	a, ok := m.admins[id]
	if !ok {
		return scylla.ErrAdminNotFound
	}
	a.LastLoginAt = &at
	return nil
}

func (m *memAdminRepo) HealthCheck(ctx context.Context) error { return nil }

type memCodeStore struct {
	codes    map[string]string
	attempts map[string]int
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{codes: make(map[string]string), attempts: make(map[string]int)}
}

func (m *memCodeStore) SetCode(ctx context.Context, id, sealed string, ttl time.Duration) error {
	m.codes[id] = sealed
	delete(m.attempts, id)
	return nil
}

func (m *memCodeStore) GetCode(ctx context.Context, id string) (string, error) {
	sealed, ok := m.codes[id]
	if !ok {
		return "", redisrepo.ErrCodeNotFound
	}
	return sealed, nil
}

func (m *memCodeStore) DeleteCode(ctx context.Context, id string) error {
	delete(m.codes, id)
	delete(m.attempts, id)
	return nil
}

func (m *memCodeStore) IncrementAttempts(ctx context.Context, id string, ttl time.Duration) (int, error) {
	m.attempts[id]++
	return m.attempts[id], nil
}

type memSettingsRepo struct {
	values map[string]string
}

func (m *memSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", scylla.ErrSettingNotFound
	}
	return v, nil
}

func (m *memSettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memSettingsRepo) Upsert(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

type silentNotifier struct{}

func (silentNotifier) SendCode(ctx context.Context, a *model.Admin, code string) error { return nil }

type fixture struct {
	router   http.Handler
	repo     *memAdminRepo
	settings *memSettingsRepo
}

func newFixture(t *testing.T, admins ...*model.Admin) *fixture {
	t.Helper()

	cfg := &config.Config{
		Environment: "development",
		Auth: config.AuthConfig{
			JWTSecret:       "handler_test_secret",
			SessionTTL:      24 * time.Hour,
			ChallengeTTL:    5 * time.Minute,
			MaxCodeAttempts: 5,
			FixedCode:       "123456",
		},
	}

	repo := newMemAdminRepo()
	for _, a := range admins {
		repo.add(a)
	}
	settingsRepo := &memSettingsRepo{values: make(map[string]string)}
	codes := newMemCodeStore()
	source := twofactor.NewFixed(cfg.Auth.FixedCode)
	mailer := notifier.NewSMTPNotifier(settingsRepo)

	services := service.NewServiceFactory(
		repo, settingsRepo, codes, source, silentNotifier{}, mailer, nil, cfg, util.Get(),
	)

	sessions := session.NewManager(token.NewCodec(cfg.Auth.JWTSecret), cfg)
	authHandler := NewAuthHandler(services.AuthService(), services.SettingsService(), sessions, util.Get())
	adminHandler := NewAdminHandler(services.AdminService(), util.Get())
	settingsHandler := NewSettingsHandler(services.SettingsService(), util.Get())
	pages := NewPageHandler(sessions)
	guard := NewGuard(sessions)

	return &fixture{
		router:   NewRouter(authHandler, adminHandler, settingsHandler, pages, guard, util.Get()),
		repo:     repo,
		settings: settingsRepo,
	}
}

func seedAdmin(t *testing.T, twoFactor bool) *model.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("gizli-sifre"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &model.Admin{
		AdminID:          "admin-1",
		Email:            "yonetici@fithub.example",
		Phone:            "905551234567",
		PasswordHash:     string(hash),
		Role:             model.RoleSuperAdmin,
		Status:           model.StatusActive,
		TwoFactorEnabled: twoFactor,
		TwoFactorMethod:  model.TwoFactorEmail,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestLoginWithoutTwoFactorSetsSession(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	rec := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	sess := cookieFrom(t, rec, session.SessionCookie)
	if sess.MaxAge != 86400 {
		t.Errorf("session MaxAge = %d, want 86400", sess.MaxAge)
	}

	// The session admits the holder to the guarded dashboard
	page := fx.do(t, http.MethodGet, "/admin", nil, sess)
	if page.Code != http.StatusOK {
		t.Errorf("dashboard status = %d, want 200", page.Code)
	}

	me := fx.do(t, http.MethodGet, "/api/auth/admin/me", nil, sess)
	if me.Code != http.StatusOK {
		t.Errorf("me status = %d, want 200", me.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	inactive := seedAdmin(t, false)
	inactive.AdminID = "admin-2"
	inactive.Email = "pasif@fithub.example"
	inactive.Phone = ""
	inactive.Status = model.StatusSuspended

	fx := newFixture(t, seedAdmin(t, false), inactive)

	cases := []struct {
		name       string
		identifier string
		password   string
		wantCode   int
		wantError  string
	}{
		{"unknown user", "kimse@fithub.example", "x", http.StatusNotFound, MsgUserNotFound},
		{"wrong password", "yonetici@fithub.example", "yanlis", http.StatusUnauthorized, MsgInvalidPassword},
		{"inactive account", "pasif@fithub.example", "gizli-sifre", http.StatusForbidden, MsgAccountInactive},
		{"missing fields", "", "", http.StatusBadRequest, MsgMissingField},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := fx.do(t, http.MethodPost, "/api/auth/admin/login",
				map[string]string{"identifier": tc.identifier, "password": tc.password})
			if rec.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Error("failure reported success")
			}
			if resp.Error != tc.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tc.wantError)
			}
			for _, c := range rec.Result().Cookies() {
				if c.Name == session.SessionCookie && c.Value != "" {
					t.Error("failed login set a session cookie")
				}
			}
		})
	}
}

func TestTwoFactorLoginFlow(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, true))

	rec := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	data, _ := resp.Data.(map[string]interface{})
	if data["requires2FA"] != true {
		t.Fatalf("requires2FA missing from %v", resp.Data)
	}

	challenge := cookieFrom(t, rec, session.ChallengeCookie)
	if challenge.MaxAge != 300 {
		t.Errorf("challenge MaxAge = %d, want 300", challenge.MaxAge)
	}

	// The partial cookie must not open the dashboard
	page := fx.do(t, http.MethodGet, "/admin", nil, &http.Cookie{Name: session.SessionCookie, Value: challenge.Value})
	if page.Code != http.StatusFound {
		t.Errorf("partial token on dashboard: status = %d, want 302", page.Code)
	}

	// Wrong code is rejected with the localized message
	wrong := fx.do(t, http.MethodPost, "/api/auth/admin/verify-2fa",
		map[string]string{"code": "999999"}, challenge)
	if wrong.Code != http.StatusUnauthorized {
		t.Errorf("wrong code status = %d, want 401", wrong.Code)
	}
	if got := decodeResponse(t, wrong).Error; got != MsgInvalidCode {
		t.Errorf("wrong code error = %q, want %q", got, MsgInvalidCode)
	}

	// Correct code upgrades to a full session
	ok := fx.do(t, http.MethodPost, "/api/auth/admin/verify-2fa",
		map[string]string{"code": "123456"}, challenge)
	if ok.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body %s", ok.Code, ok.Body.String())
	}
	sess := cookieFrom(t, ok, session.SessionCookie)

	page = fx.do(t, http.MethodGet, "/admin", nil, sess)
	if page.Code != http.StatusOK {
		t.Errorf("dashboard after 2FA: status = %d, want 200", page.Code)
	}
}

func TestVerifyAgainstDeletedAdmin(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, true))

	login := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	challenge := cookieFrom(t, login, session.ChallengeCookie)

	// The account is removed while its challenge is still pending
	delete(fx.repo.admins, "admin-1")

	rec := fx.do(t, http.MethodPost, "/api/auth/admin/verify-2fa",
		map[string]string{"code": "123456"}, challenge)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := decodeResponse(t, rec).Error; got != MsgAdminNotFound {
		t.Errorf("error = %q, want %q", got, MsgAdminNotFound)
	}
}

func TestVerifyWithoutChallengeCookie(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, true))

	rec := fx.do(t, http.MethodPost, "/api/auth/admin/verify-2fa", map[string]string{"code": "123456"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := decodeResponse(t, rec).Error; got != MsgSessionExpired {
		t.Errorf("error = %q, want %q", got, MsgSessionExpired)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	login := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	sess := cookieFrom(t, login, session.SessionCookie)

	logout := fx.do(t, http.MethodPost, "/api/auth/admin/logout", nil, sess)
	if logout.Code != http.StatusOK {
		t.Fatalf("logout status = %d", logout.Code)
	}

	cleared := false
	for _, c := range logout.Result().Cookies() {
		if c.Name == session.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}

	// Logging out twice is harmless
	again := fx.do(t, http.MethodPost, "/api/auth/admin/logout", nil)
	if again.Code != http.StatusOK {
		t.Errorf("second logout status = %d, want 200", again.Code)
	}
}

func TestProfileAPIs(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	login := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	sess := cookieFrom(t, login, session.SessionCookie)

	// Unauthenticated API calls get 401 JSON, never a redirect
	unauth := fx.do(t, http.MethodGet, "/api/admin/profile", nil)
	if unauth.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated profile status = %d, want 401", unauth.Code)
	}

	get := fx.do(t, http.MethodGet, "/api/admin/profile", nil, sess)
	if get.Code != http.StatusOK {
		t.Fatalf("profile status = %d, body %s", get.Code, get.Body.String())
	}

	put := fx.do(t, http.MethodPut, "/api/admin/profile",
		map[string]string{"firstName": "Mehmet", "lastName": "Demir", "email": "mehmet@fithub.example"}, sess)
	if put.Code != http.StatusOK {
		t.Fatalf("profile update status = %d, body %s", put.Code, put.Body.String())
	}
	if fx.repo.admins["admin-1"].FirstName != "Mehmet" {
		t.Errorf("first name not stored: %q", fx.repo.admins["admin-1"].FirstName)
	}

	wrongPw := fx.do(t, http.MethodPost, "/api/admin/profile/password",
		map[string]string{"currentPassword": "yanlis", "newPassword": "yeni-sifre"}, sess)
	if wrongPw.Code != http.StatusBadRequest {
		t.Errorf("wrong current password status = %d, want 400", wrongPw.Code)
	}
	if got := decodeResponse(t, wrongPw).Error; got != MsgCurrentPassword {
		t.Errorf("error = %q, want %q", got, MsgCurrentPassword)
	}

	changePw := fx.do(t, http.MethodPost, "/api/admin/profile/password",
		map[string]string{"currentPassword": "gizli-sifre", "newPassword": "yeni-sifre"}, sess)
	if changePw.Code != http.StatusOK {
		t.Fatalf("password change status = %d, body %s", changePw.Code, changePw.Body.String())
	}
	hash := fx.repo.admins["admin-1"].PasswordHash
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("yeni-sifre")) != nil {
		t.Error("new password does not verify against stored hash")
	}
}

func TestTwoFactorEnrollmentAPIs(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	login := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	sess := cookieFrom(t, login, session.SessionCookie)

	send := fx.do(t, http.MethodPost, "/api/admin/profile/2fa/send",
		map[string]string{"method": model.TwoFactorEmail}, sess)
	if send.Code != http.StatusOK {
		t.Fatalf("2fa send status = %d, body %s", send.Code, send.Body.String())
	}

	verify := fx.do(t, http.MethodPost, "/api/admin/profile/2fa/verify",
		map[string]string{"method": model.TwoFactorEmail, "code": "123456"}, sess)
	if verify.Code != http.StatusOK {
		t.Fatalf("2fa verify status = %d, body %s", verify.Code, verify.Body.String())
	}
	if !fx.repo.admins["admin-1"].TwoFactorEnabled {
		t.Error("two-factor not enabled after verification")
	}

	disable := fx.do(t, http.MethodDelete, "/api/admin/profile/2fa", nil, sess)
	if disable.Code != http.StatusOK {
		t.Fatalf("2fa disable status = %d, body %s", disable.Code, disable.Body.String())
	}
	if fx.repo.admins["admin-1"].TwoFactorEnabled {
		t.Error("two-factor still enabled after disable")
	}
}

func TestSMTPSettingsAPIs(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	login := fx.do(t, http.MethodPost, "/api/auth/admin/login",
		map[string]string{"identifier": "yonetici@fithub.example", "password": "gizli-sifre"})
	sess := cookieFrom(t, login, session.SessionCookie)

	put := fx.do(t, http.MethodPut, "/api/admin/settings/smtp", map[string]interface{}{
		"host": "smtp.fithub.example", "port": 465, "user": "postmaster",
		"password": "relay-secret", "from": "no-reply@fithub.example", "secure": true,
	}, sess)
	if put.Code != http.StatusOK {
		t.Fatalf("settings save status = %d, body %s", put.Code, put.Body.String())
	}
	if fx.settings.values[model.SettingSMTPHost] != "smtp.fithub.example" {
		t.Errorf("host not stored: %q", fx.settings.values[model.SettingSMTPHost])
	}

	get := fx.do(t, http.MethodGet, "/api/admin/settings/smtp", nil, sess)
	if get.Code != http.StatusOK {
		t.Fatalf("settings read status = %d", get.Code)
	}
	data, _ := decodeResponse(t, get).Data.(map[string]interface{})
	if data["host"] != "smtp.fithub.example" {
		t.Errorf("host = %v", data["host"])
	}
	if data["hasPassword"] != true {
		t.Error("stored password not reported")
	}
	if pw, ok := data["password"]; ok && pw != "" {
		t.Errorf("password leaked in read: %v", pw)
	}

	// Resubmitting without a password keeps the stored one
	again := fx.do(t, http.MethodPut, "/api/admin/settings/smtp", map[string]interface{}{
		"host": "smtp.fithub.example", "port": 465, "from": "no-reply@fithub.example",
	}, sess)
	if again.Code != http.StatusOK {
		t.Fatalf("settings resave status = %d", again.Code)
	}
	if fx.settings.values[model.SettingSMTPPass] != "relay-secret" {
		t.Error("stored password lost on resubmit without password")
	}
}

func TestCaptchaConfigDefaults(t *testing.T) {
	fx := newFixture(t, seedAdmin(t, false))

	rec := fx.do(t, http.MethodGet, "/api/auth/captcha-config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data, _ := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["provider"] != "turnstile" {
		t.Errorf("provider = %v, want turnstile", data["provider"])
	}
	if data["enabled"] != false {
		t.Errorf("enabled = %v, want false by default", data["enabled"])
	}
}
