package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/auth"
	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/handlers"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/notifier"
	"github.com/pryme0/vyb-q-admin/internal/routes"
)

const testSessionSecret = "test-secret-key"

// fixedNow is the clock every handler test runs at.
var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type sms struct{ To, Message string }

type recordingNotifier struct {
	mu     sync.Mutex
	sms    []sms
	emails []notifier.Email
}

func (n *recordingNotifier) SendSMS(_ context.Context, to, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sms = append(n.sms, sms{To: to, Message: message})
	return nil
}

func (n *recordingNotifier) SendEmail(_ context.Context, msg notifier.Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, msg)
	return nil
}

func (n *recordingNotifier) smsCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sms)
}

func (n *recordingNotifier) emailCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.emails)
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	published *recordingPublisher
	notified  *recordingNotifier
	uploadDir string
}

func setupTestRouter(t *testing.T) *testEnv {
	return newTestEnv(t, "file:"+t.Name()+"?mode=memory&cache=shared")
}

// setupStrictTestRouter enforces foreign keys the way Postgres does.
func setupStrictTestRouter(t *testing.T) *testEnv {
	return newTestEnv(t, "file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=1")
}

func newTestEnv(t *testing.T, dsn string) *testEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))

	originalDB := db.DB
	db.SetTestDB(testDB)
	auth.InitStaff("staff-test-secret", time.Hour)

	env := &testEnv{
		db:        testDB,
		published: &recordingPublisher{},
		notified:  &recordingNotifier{},
		uploadDir: t.TempDir(),
	}
	handlers.SetPublisher(env.published)
	handlers.SetNotifier(env.notified)
	handlers.SetUploadDir(env.uploadDir)
	handlers.SetClock(func() time.Time { return fixedNow })

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(testSessionSecret))))
	routes.Register(r, routes.Options{UploadDir: env.uploadDir})
	env.router = r

	t.Cleanup(func() {
		db.SetTestDB(originalDB)
		handlers.SetPublisher(events.Nop{})
		handlers.SetNotifier(notifier.Nop{})
		handlers.SetClock(nil)
	})

	return env
}

func staffHeader(t *testing.T, role models.Role) http.Header {
	token, _, err := auth.IssueStaffToken(models.User{ID: 1, Name: "Test " + string(role), Role: role})
	require.NoError(t, err)
	return http.Header{"Authorization": {"Bearer " + token}}
}

// client carries session cookies from one request to the next, like a
// browser would.
type client struct {
	env     *testEnv
	header  http.Header
	cookies map[string]*http.Cookie
}

func (e *testEnv) client(header http.Header) *client {
	return &client{env: e, header: header, cookies: map[string]*http.Cookie{}}
}

func (e *testEnv) staff(t *testing.T, role models.Role) *client {
	return e.client(staffHeader(t, role))
}

func (e *testEnv) guest() *client {
	return e.client(nil)
}

// loginCustomer signs the client in as customerID by minting the session
// cookie the OIDC callback would have set.
func (cl *client) loginCustomer(customerID uint) *client {
	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(testSessionSecret)))(tempC)

	session := sessions.Default(tempC)
	session.Set("customer_id", customerID)
	_ = session.Save()

	for _, ck := range tempW.Result().Cookies() {
		cl.cookies[ck.Name] = ck
	}
	return cl
}

func (cl *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return cl.send(req)
}

func (cl *client) send(req *http.Request) *httptest.ResponseRecorder {
	for k, v := range cl.header {
		req.Header[k] = v
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	cl.env.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		cl.cookies[ck.Name] = ck
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, w)["message"]
}

// seedMenu creates a category with two available dishes and one that is off
// the menu.
func seedMenu(t *testing.T, d *gorm.DB) (models.Category, []models.MenuItem) {
	cat := models.Category{Name: "Mains"}
	require.NoError(t, d.Create(&cat).Error)

	items := []models.MenuItem{
		{Name: "Pilau", Price: 10, CategoryID: cat.ID, IsAvailable: true},
		{Name: "Ugali & Sukuma", Price: 6, CategoryID: cat.ID, IsAvailable: true},
		{Name: "Seasonal Fish", Price: 25, CategoryID: cat.ID, IsAvailable: true},
	}
	require.NoError(t, d.Create(&items).Error)
	require.NoError(t, d.Model(&items[2]).Update("is_available", false).Error)
	items[2].IsAvailable = false
	return cat, items
}
