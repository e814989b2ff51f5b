package routes

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/app/controllers"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/repositories/memory"
	"github.com/oneday/onedayclass/internal/app/services"
	"github.com/oneday/onedayclass/internal/middleware"
	pkgauth "github.com/oneday/onedayclass/internal/pkg/auth"
	"github.com/oneday/onedayclass/internal/pkg/filestorage"
	"github.com/oneday/onedayclass/internal/pkg/session"
	"github.com/oneday/onedayclass/internal/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret123"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router   *gin.Engine
	store    *memory.Store
	sessions *session.Manager
	root     string

	// tokens maps a session cookie value to the form token bound to it
	tokens    map[string]string
	anonymous *http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	pkgauth.BcryptCost = bcrypt.MinCost

	root := t.TempDir()
	storage, err := filestorage.NewLocalStorage(root)
	require.NoError(t, err)

	store := memory.NewStore()
	svc := services.NewServices(services.Repos{
		Users:        store.Users,
		Questions:    store.Questions,
		Answers:      store.Answers,
		Reservations: store.Reservations,
		Courses:      store.Courses,
	}, storage, validation.DefaultImageExtensions)

	sessions := session.NewManager([]byte("0123456789abcdef0123456789abcdef"), session.Options{Name: "test", MaxAge: 3600})
	authMiddleware := middleware.NewAuthMiddleware(sessions, svc.Auth)

	router, err := NewEngine(EngineOptions{MaxBodyBytes: 10 << 20}, authMiddleware)
	require.NoError(t, err)
	SetupRouter(router, Controllers{
		Home:        controllers.NewHomeController(sessions),
		Question:    controllers.NewQuestionController(sessions, svc.Question),
		Answer:      controllers.NewAnswerController(sessions, svc.Answer, svc.Question),
		Auth:        controllers.NewAuthController(sessions, svc.Auth),
		Course:      controllers.NewCourseController(sessions, svc.Course),
		Reservation: controllers.NewReservationController(sessions, svc.Reservation),
	}, authMiddleware, middleware.NewRateLimiter(nil), LoginLimit{Attempts: 5, Window: time.Minute})

	app := &testApp{router: router, store: store, sessions: sessions, root: root, tokens: map[string]string{}}
	app.anonymous = app.sessionCookie(t, 0)
	return app
}

func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := pkgauth.HashPassword(testPassword)
	require.NoError(t, err)
	user := &models.User{Username: username, Password: hash, Email: username + "@example.com"}
	_, err = a.store.Users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

// sessionCookie is the session cookie a browser holds after loading a form,
// logged in as userID unless it is 0
func (a *testApp) sessionCookie(t *testing.T, userID int64) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID > 0 {
		require.NoError(t, a.sessions.Login(rec, req, userID))
	}
	token, err := a.sessions.CSRFToken(rec, req)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	cookie := cookies[len(cookies)-1]
	a.tokens[cookie.Value] = token
	return cookie
}

// loginCookie is the session cookie a browser holds after userID logged in
func (a *testApp) loginCookie(t *testing.T, userID int64) *http.Cookie {
	t.Helper()
	return a.sessionCookie(t, userID)
}

// do sends req the way a browser would: unsafe requests without cookies use an
// anonymous session, and the session's form token is echoed in the header.
func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		if len(cookies) == 0 {
			cookies = []*http.Cookie{a.anonymous}
		}
		if req.Header.Get(middleware.CSRFHeader) == "" {
			for _, c := range cookies {
				if token, ok := a.tokens[c.Value]; ok {
					req.Header.Set(middleware.CSRFHeader, token)
				}
			}
		}
	}
	return a.send(req, cookies...)
}

// send passes req through the router untouched
func (a *testApp) send(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) storedFiles(t *testing.T) []string {
	t.Helper()
	var out []string
	require.NoError(t, filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(a.root, p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	}))
	return out
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// postMultipart builds a browser-style multipart submission; files maps a field to file names
func postMultipart(t *testing.T, path string, fields map[string]string, files map[string][]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			part, err := w.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write([]byte("data of " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func courseFields(classID string) map[string]string {
	return map[string]string{
		"classid":          classID,
		"description":      "A gentle morning flow",
		"price":            "10000",
		"duration_minutes": "60",
	}
}

func TestHomeAndUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OneDay Class")

	rec = app.do(httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRouteRedirectsToLoginAndBack(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/reservations/new?date=2024-05-01", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Equal(t, "/auth/login?next=%2Freservations%2Fnew%3Fdate%3D2024-05-01", location)

	rec = app.do(postForm(location, url.Values{"username": {"alice"}, "password": {testPassword}}))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/reservations/new?date=2024-05-01", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestLoginIgnoresExternalNext(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	for _, next := range []string{"//evil.example", "https://evil.example/", "/\\evil.example"} {
		rec := app.do(postForm("/auth/login?next="+url.QueryEscape(next),
			url.Values{"username": {"alice"}, "password": {testPassword}}))
		require.Equal(t, http.StatusFound, rec.Code, next)
		assert.Equal(t, controllers.MyPagePath, rec.Header().Get("Location"), next)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	rec := app.do(postForm("/auth/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect username or password.")

	rec = app.do(postForm("/auth/login", url.Values{"username": {"nobody"}, "password": {testPassword}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignup(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(postForm("/auth/signup", url.Values{
		"username":  {"alice"},
		"password1": {testPassword},
		"password2": {testPassword},
		"email":     {"alice@example.com"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))

	user, err := app.store.Users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, user.Password)
	assert.True(t, pkgauth.CheckPassword(user.Password, testPassword))

	rec = app.do(postForm("/auth/signup", url.Values{
		"username":  {"alice2"},
		"password1": {testPassword},
		"password2": {testPassword},
		"email":     {"alice@example.com"},
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "That email is already registered.")
	assert.Equal(t, 1, app.store.Users.Count())
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(postForm("/auth/signup", url.Values{
		"username":  {"al"},
		"password1": {"one"},
		"password2": {"two"},
		"email":     {"not-an-email"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Must be at least 3 characters.")
	assert.Contains(t, body, "Passwords do not match.")
	assert.Contains(t, body, "Enter a valid email address.")
	assert.Equal(t, 0, app.store.Users.Count())
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	cookie := app.loginCookie(t, user.ID)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/auth/logout", nil), cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))

	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.True(t, cleared[len(cleared)-1].MaxAge < 0)
}

func TestMyPage(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/auth/mypage", nil), app.loginCookie(t, user.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}

func TestCourseCreate(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")

	rec := app.do(postMultipart(t, "/course/create", courseFields("yoga101"),
		map[string][]string{"image": {"cover.jpg"}}), app.loginCookie(t, user.ID))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/course/workspace?tab=completed", rec.Header().Get("Location"))

	published, err := app.store.Courses.ListByPublished(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	course := published[0]
	assert.Equal(t, "yoga101", course.ClassID)
	assert.True(t, course.IsPublished)
	assert.True(t, course.OwnedBy(user.ID))
	assert.Equal(t, 10000, course.Price)
	assert.Equal(t, 60, course.DurationMinutes)
	assert.Equal(t, 1, app.store.Courses.ImageCount(course.ID))
	require.NotNil(t, course.ImagePath)
	assert.True(t, strings.HasPrefix(*course.ImagePath, "courses/"))
	assert.Len(t, app.storedFiles(t), 1)
}

func TestCourseCreateKeepsAtMostFourExtras(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")

	rec := app.do(postMultipart(t, "/course/create", courseFields("pottery"), map[string][]string{
		"image":  {"cover.png"},
		"images": {"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"},
	}), app.loginCookie(t, user.ID))
	require.Equal(t, http.StatusFound, rec.Code)

	published, err := app.store.Courses.ListByPublished(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, 5, app.store.Courses.ImageCount(published[0].ID))
}

func TestCourseCreateRejectsDisallowedFileBeforeWriting(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")

	rec := app.do(postMultipart(t, "/course/create", courseFields("yoga101"),
		map[string][]string{"image": {"notes.txt"}}), app.loginCookie(t, user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, app.storedFiles(t))

	published, err := app.store.Courses.ListByPublished(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, published)
}

func TestCourseCreateRequiresImageAndValidNumbers(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	cookie := app.loginCookie(t, user.ID)

	rec := app.do(postMultipart(t, "/course/create", courseFields("yoga101"), nil), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "A main image is required.")

	fields := courseFields("yoga101")
	fields["price"] = "-1"
	fields["duration_minutes"] = "3"
	rec = app.do(postMultipart(t, "/course/create", fields, map[string][]string{"image": {"a.jpg"}}), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, app.storedFiles(t))
}

func TestCourseCreateDuplicateClassID(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	owner := user.ID
	_, err := app.store.Courses.Create(context.Background(),
		&models.Course{ClassID: "yoga101", Description: "first", IsPublished: true, UserID: &owner},
		[]string{"courses/first.jpg"})
	require.NoError(t, err)

	rec := app.do(postMultipart(t, "/course/create", courseFields(" yoga101 "),
		map[string][]string{"image": {"cover.jpg"}}), app.loginCookie(t, user.ID))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.CourseCreatePath, rec.Header().Get("Location"))
	assert.Empty(t, app.storedFiles(t))

	published, err := app.store.Courses.ListByPublished(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, published, 1)
}

func TestWorkspaceTabs(t *testing.T) {
	app := newTestApp(t)
	app.store.Courses.AddDraft(&models.Course{ClassID: "draft-class", Description: "not yet"})
	_, err := app.store.Courses.Create(context.Background(),
		&models.Course{ClassID: "live-class", Description: "open", IsPublished: true}, nil)
	require.NoError(t, err)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/course/workspace", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "draft-class")
	assert.NotContains(t, rec.Body.String(), "live-class")

	rec = app.do(httptest.NewRequest(http.MethodGet, "/course/workspace?tab=completed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "live-class")
	assert.NotContains(t, rec.Body.String(), "draft-class")

	for _, path := range []string{"/course", "/course/"} {
		rec = app.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, controllers.WorkspacePath, rec.Header().Get("Location"), path)
	}
}

func TestCourseNonOwnerIsRefused(t *testing.T) {
	app := newTestApp(t)
	owner := app.createUser(t, "alice")
	other := app.createUser(t, "bob")
	ownerID := owner.ID
	id, err := app.store.Courses.Create(context.Background(),
		&models.Course{ClassID: "yoga101", Description: "mine", Price: 100, IsPublished: true, UserID: &ownerID},
		[]string{"courses/a.jpg"})
	require.NoError(t, err)
	cookie := app.loginCookie(t, other.ID)

	rec := app.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/course/%d/manage", id), nil), cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.WorkspacePath, rec.Header().Get("Location"))

	rec = app.do(postMultipart(t, fmt.Sprintf("/course/%d/edit", id), map[string]string{"price": "1"}, nil), cookie)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = app.do(postForm(fmt.Sprintf("/course/%d/delete", id), url.Values{}), cookie)
	assert.Equal(t, http.StatusFound, rec.Code)

	course, err := app.store.Courses.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100, course.Price)
	assert.Equal(t, 1, app.store.Courses.ImageCount(id))
}

func TestCourseEditAndDelete(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	cookie := app.loginCookie(t, user.ID)

	rec := app.do(postMultipart(t, "/course/create", courseFields("yoga101"),
		map[string][]string{"image": {"cover.jpg"}}), cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	published, err := app.store.Courses.ListByPublished(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	course := published[0]
	require.Len(t, course.Images, 1)

	rec = app.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/course/%d/manage", course.ID), nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "yoga101")

	rec = app.do(postMultipart(t, fmt.Sprintf("/course/%d/edit", course.ID), map[string]string{
		"classid":          "",
		"price":            "12,500",
		"duration_minutes": "abc",
		"remove_image_id":  fmt.Sprint(course.Images[0].ID),
	}, map[string][]string{"images": {"new.gif"}}), cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	updated, err := app.store.Courses.GetByID(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, "yoga101", updated.ClassID)
	assert.Equal(t, 12500, updated.Price)
	assert.Equal(t, 60, updated.DurationMinutes)
	require.Len(t, updated.Images, 1)
	require.NotNil(t, updated.ImagePath)
	assert.Equal(t, updated.Images[0].Path, *updated.ImagePath)
	assert.Equal(t, []string{updated.Images[0].Path}, app.storedFiles(t))

	rec = app.do(postForm(fmt.Sprintf("/course/%d/delete", course.ID), url.Values{}), cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = app.store.Courses.GetByID(context.Background(), course.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, app.store.Courses.ImageCount(course.ID))
	assert.Empty(t, app.storedFiles(t))
}

func TestUploadServing(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, os.MkdirAll(filepath.Join(app.root, "courses"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(app.root, "courses", "a.jpg"), []byte("jpeg bytes"), 0o644))

	for _, path := range []string{"/course/uploads/courses/a.jpg", "/course/uploads/uploads/courses/a.jpg"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "jpeg bytes", rec.Body.String(), path)
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/course/uploads/courses/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReservationCreateIsPending(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	require.Equal(t, int64(1), user.ID)

	rec := app.do(postForm("/reservations/new", url.Values{
		"class_name":    {"Pilates"},
		"reserved_date": {"2024-05-01"},
		"reserved_time": {"10:00"},
		"status":        {"confirmed"},
	}), app.loginCookie(t, user.ID))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.ReservationListPath, rec.Header().Get("Location"))

	list, err := app.store.Reservations.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReservationPending, list[0].Status)
	assert.Equal(t, int64(1), list[0].UserID)
	assert.Equal(t, "Pilates", list[0].ClassName)
	assert.Equal(t, "2024-05-01", list[0].DateString())
	assert.Equal(t, "10:00", list[0].ReservedTime)
}

func TestReservationFormPrefillAndValidation(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	cookie := app.loginCookie(t, user.ID)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/reservations/new?date=2024-06-02&class_name=Yoga", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="2024-06-02"`)
	assert.Contains(t, rec.Body.String(), `value="Yoga"`)

	rec = app.do(postForm("/reservations/new", url.Values{
		"class_name":    {"Pilates"},
		"reserved_date": {"01/05/2024"},
		"reserved_time": {"10:00"},
	}), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	list, err := app.store.Reservations.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReservationEditKeepsStatus(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	res := &models.Reservation{UserID: user.ID, ClassName: "Pilates", ReservedDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), ReservedTime: "10:00", Status: models.ReservationPending}
	id, err := app.store.Reservations.Create(context.Background(), res)
	require.NoError(t, err)
	app.store.Reservations.SetStatus(id, "confirmed")

	rec := app.do(postForm(fmt.Sprintf("/reservations/%d/edit", id), url.Values{
		"class_name":    {"Yoga"},
		"reserved_date": {"2024-05-02"},
		"reserved_time": {"11:00"},
		"status":        {"pending"},
	}), app.loginCookie(t, user.ID))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("/reservations/%d", id), rec.Header().Get("Location"))

	got, err := app.store.Reservations.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Yoga", got.ClassName)
	assert.Equal(t, "2024-05-02", got.DateString())
	assert.Equal(t, models.ReservationStatus("confirmed"), got.Status)
}

func TestReservationOwnership(t *testing.T) {
	app := newTestApp(t)
	owner := app.createUser(t, "alice")
	other := app.createUser(t, "bob")
	id, err := app.store.Reservations.Create(context.Background(), &models.Reservation{
		UserID: owner.ID, ClassName: "Pilates", ReservedDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		ReservedTime: "10:00", Status: models.ReservationPending,
	})
	require.NoError(t, err)
	cookie := app.loginCookie(t, other.ID)

	rec := app.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/reservations/%d", id), nil), cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.ReservationListPath, rec.Header().Get("Location"))

	rec = app.do(postForm(fmt.Sprintf("/reservations/%d/edit", id), url.Values{
		"class_name": {"Hijack"}, "reserved_date": {"2024-05-09"}, "reserved_time": {"09:00"},
	}), cookie)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = app.do(postForm(fmt.Sprintf("/reservations/%d/delete", id), url.Values{}), cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.ReservationListPath, rec.Header().Get("Location"))

	got, err := app.store.Reservations.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Pilates", got.ClassName)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/reservations/9999/edit", nil), cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/reservations/", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Pilates")
}

func TestQuestionListPagination(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	for i := 1; i <= 31; i++ {
		_, err := app.store.Questions.Create(context.Background(), &models.Question{
			Subject: fmt.Sprintf("question %02d", i), Content: "body", UserID: user.ID,
		})
		require.NoError(t, err)
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/qna", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "question 31")
	assert.NotContains(t, rec.Body.String(), "question 01")
	assert.Contains(t, rec.Body.String(), "Page 1 of 2")

	rec = app.do(httptest.NewRequest(http.MethodGet, "/question/list/?page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "question 01")
	assert.NotContains(t, rec.Body.String(), "question 31")

	rec = app.do(httptest.NewRequest(http.MethodGet, "/qna?page=abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page 1 of 2")
}

func TestQuestionLifecycle(t *testing.T) {
	app := newTestApp(t)
	owner := app.createUser(t, "alice")
	other := app.createUser(t, "bob")
	ownerCookie := app.loginCookie(t, owner.ID)
	otherCookie := app.loginCookie(t, other.ID)

	rec := app.do(postMultipart(t, "/question/create/", map[string]string{
		"subject": "How long is a class?", "content": "Asking for a friend.",
	}, map[string][]string{"image": {"q.png"}}), ownerCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.QuestionListPath, rec.Header().Get("Location"))

	questions, total, err := app.store.Questions.List(context.Background(), 1, 30)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	q := questions[0]
	require.NotNil(t, q.ImagePath)
	detail := fmt.Sprintf("/question/detail/%d/", q.ID)

	rec = app.do(postForm(fmt.Sprintf("/answer/create/%d", q.ID), url.Values{"content": {"About an hour."}}), otherCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), detail+"#answer_"))

	rec = app.do(httptest.NewRequest(http.MethodGet, detail, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About an hour.")

	// non-owner edits and deletes are refused
	rec = app.do(postForm(fmt.Sprintf("/question/modify/%d/", q.ID), url.Values{"subject": {"hijack"}, "content": {"x"}}), otherCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detail, rec.Header().Get("Location"))
	rec = app.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/question/delete/%d/", q.ID), nil), otherCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	got, err := app.store.Questions.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "How long is a class?", got.Subject)

	answers, err := app.store.Answers.ListByQuestion(context.Background(), q.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	rec = app.do(postForm(fmt.Sprintf("/answer/modify/%d/", answers[0].ID), url.Values{"content": {"hijack"}}), ownerCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detail, rec.Header().Get("Location"))

	// owner edit
	rec = app.do(postMultipart(t, fmt.Sprintf("/question/modify/%d/", q.ID), map[string]string{
		"subject": "How long is one class?", "content": "Edited.",
	}, nil), ownerCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	got, err = app.store.Questions.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "How long is one class?", got.Subject)
	assert.NotNil(t, got.ModifyDate)

	// owner delete cascades to answers and removes the image
	rec = app.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/question/delete/%d/", q.ID), nil), ownerCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.QuestionListPath, rec.Header().Get("Location"))
	answers, err = app.store.Answers.ListByQuestion(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.Empty(t, app.storedFiles(t))

	rec = app.do(httptest.NewRequest(http.MethodGet, detail, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnswerCreateInvalidRerendersQuestion(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	id, err := app.store.Questions.Create(context.Background(), &models.Question{Subject: "Parking?", Content: "Is there any?", UserID: user.ID})
	require.NoError(t, err)

	rec := app.do(postForm(fmt.Sprintf("/answer/create/%d", id), url.Values{"content": {"   "}}), app.loginCookie(t, user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Parking?")
	assert.Contains(t, rec.Body.String(), "This field is required.")

	answers, err := app.store.Answers.ListByQuestion(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, answers)

	rec = app.do(postForm("/answer/create/9999", url.Values{"content": {"hello"}}), app.loginCookie(t, user.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/question/create/", bytes.NewReader(make([]byte, 11<<20)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := app.do(req, app.loginCookie(t, user.ID))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCourseCreateWithLongFilename(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")

	rec := app.do(postMultipart(t, "/course/create", courseFields("yoga101"),
		map[string][]string{"image": {strings.Repeat("a", 240) + ".jpg"}}), app.loginCookie(t, user.ID))
	require.Equal(t, http.StatusFound, rec.Code)

	published, err := app.store.Courses.ListByPublished(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	require.NotNil(t, published[0].ImagePath)
	assert.LessOrEqual(t, len(*published[0].ImagePath), filestorage.MaxStoredPathLength)
	assert.True(t, strings.HasSuffix(*published[0].ImagePath, ".jpg"))
	assert.Len(t, app.storedFiles(t), 1)
}

func TestCourseCreateRejectsOversizedNumbers(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")

	fields := courseFields("yoga101")
	fields["price"] = "3,000,000,000"
	fields["duration_minutes"] = "99999999999"
	rec := app.do(postMultipart(t, "/course/create", fields,
		map[string][]string{"image": {"cover.jpg"}}), app.loginCookie(t, user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Price must be at most 2147483647.")
	assert.Empty(t, app.storedFiles(t))
}

func TestSignupRejectsOverlongEmail(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(postForm("/auth/signup", url.Values{
		"username":  {"alice"},
		"password1": {testPassword},
		"password2": {testPassword},
		"email":     {"alice@" + strings.Repeat("a", 60) + "." + strings.Repeat("b", 60) + ".com"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Must be at most 120 characters.")
	assert.Equal(t, 0, app.store.Users.Count())
}

var csrfFieldPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// sessionOf returns the last session cookie set by a response
func sessionOf(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test" {
			found = c
		}
	}
	require.NotNil(t, found)
	return found
}

func TestUnsafeRequestWithoutFormTokenIsRefused(t *testing.T) {
	app := newTestApp(t)
	user := app.createUser(t, "alice")
	cookie := app.loginCookie(t, user.ID)
	form := url.Values{"class_name": {"Pilates"}, "reserved_date": {"2024-05-01"}, "reserved_time": {"10:00"}}

	rec := app.send(postForm("/reservations/new", form), cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := postForm("/reservations/new", form)
	req.Header.Set(middleware.CSRFHeader, "forged")
	rec = app.send(req, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// a token from another session is not accepted either
	other := app.loginCookie(t, app.createUser(t, "bob").ID)
	req = postForm("/reservations/new", form)
	req.Header.Set(middleware.CSRFHeader, app.tokens[other.Value])
	rec = app.send(req, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.send(postMultipart(t, "/course/create", courseFields("yoga101"),
		map[string][]string{"image": {"cover.jpg"}}), cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, app.storedFiles(t))

	list, err := app.store.Reservations.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFormTokenRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	rec := app.send(httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	match := csrfFieldPattern.FindStringSubmatch(rec.Body.String())
	require.Len(t, match, 2)
	cookie := sessionOf(t, rec)

	rec = app.send(postForm("/auth/login", url.Values{
		"username":           {"alice"},
		"password":           {testPassword},
		middleware.CSRFField: {match[1]},
	}), cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.MyPagePath, rec.Header().Get("Location"))
	cookie = sessionOf(t, rec)

	rec = app.send(httptest.NewRequest(http.MethodGet, "/reservations/new", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="`+match[1]+`"`)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("subject", "Is there parking?"))
	require.NoError(t, w.WriteField("content", "Coming by car."))
	require.NoError(t, w.WriteField(middleware.CSRFField, match[1]))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/question/create/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec = app.send(req, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, controllers.QuestionListPath, rec.Header().Get("Location"))
}

func TestStaleSessionKeepsLoginFlash(t *testing.T) {
	app := newTestApp(t)
	stale := app.loginCookie(t, 999)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/reservations/", nil), stale)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), middleware.LoginPath))

	kept := sessionOf(t, rec)
	assert.Greater(t, kept.MaxAge, 0)

	rec = app.do(httptest.NewRequest(http.MethodGet, rec.Header().Get("Location"), nil), kept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please log in to access this page.")
}
