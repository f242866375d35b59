package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ArowuTest/orgfees-backend/api/routes"
	"github.com/ArowuTest/orgfees-backend/internal/config"
	"github.com/ArowuTest/orgfees-backend/internal/handlers"
	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories/memory"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/ArowuTest/orgfees-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	services.SetBcryptCost(bcrypt.MinCost)
}

const (
	rootEmail    = "root@school.edu"
	rootPassword = "correct-horse"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Total   *int            `json:"total"`
	Next    *int            `json:"next"`
	Prev    *int            `json:"prev"`
	Error   *struct {
		Status int               `json:"status"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

type api struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func newAPI(t *testing.T) *api {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Term:   config.TermConfig{Semester: 1, Year: 2024},
	}

	users := memory.NewUserRepository()
	roles := memory.NewRoleRepository()
	orgs := memory.NewOrganizationRepository()
	sessions := memory.NewSessionRepository()
	terms := memory.NewTermResolver()
	tokens := jwt.NewTokenService(jwt.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "test",
	})

	authService := services.NewAuthService(users, roles, sessions, tokens)
	userService := services.NewUserService(users, roles, orgs, sessions)
	transactionService := services.NewTransactionService(orgs, users, terms)

	_, err := userService.SeedSuperAdmin(context.Background(), &models.CreateUserRequest{
		Email: rootEmail, FirstName: "Root", LastName: "Admin", Password: rootPassword,
	})
	require.NoError(t, err)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		Authenticator:       authService,
		AuthHandler:         handlers.NewAuthHandler(authService, handlers.CookieConfig{}),
		UserHandler:         handlers.NewUserHandler(userService),
		RoleHandler:         handlers.NewRoleHandler(services.NewRoleService(roles, users)),
		OrganizationHandler: handlers.NewOrganizationHandler(services.NewOrganizationService(orgs, users, terms)),
		CategoryHandler:     handlers.NewCategoryHandler(services.NewCategoryService(orgs, terms)),
		StudentHandler:      handlers.NewStudentHandler(services.NewStudentService(orgs, terms)),
		TransactionHandler:  handlers.NewTransactionHandler(transactionService),
		PrelistingHandler:   handlers.NewPrelistingHandler(services.NewPrelistingService(orgs, terms, transactionService)),
	})
	return &api{t: t, router: router}
}

func (a *api) do(method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req)
}

func (a *api) send(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *api) login() {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": rootEmail, "password": rootPassword})
	require.Equal(a.t, http.StatusOK, w.Code, env.Message)
	a.cookies = w.Result().Cookies()
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type idOnly struct {
	ID string `json:"id"`
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestLoginSetsHTTPOnlyCookies(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": rootEmail, "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, env = a.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "email")

	a.login()
	names := map[string]*http.Cookie{}
	for _, c := range a.cookies {
		names[c.Name] = c
	}
	require.Contains(t, names, middleware.AccessTokenCookie)
	require.Contains(t, names, middleware.RefreshTokenCookie)
	assert.True(t, names[middleware.AccessTokenCookie].HttpOnly)

	w, env = a.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), rootEmail)

	w, _ = a.do(http.MethodPost, "/api/v1/auth/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	a.cookies = w.Result().Cookies()

	w, _ = a.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		assert.Empty(t, c.Value, c.Name)
	}
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/api/v1/student", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusUnauthorized, env.Error.Status)
}

func TestFeeCollectionFlow(t *testing.T) {
	a := newAPI(t)
	a.login()

	w, env := a.do(http.MethodPost, "/api/v1/organization", gin.H{"name": "Computing Society", "acronym": "CS", "departments": []string{"bscs"}})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	org := decode[idOnly](t, env)

	w, env = a.do(http.MethodPost, "/api/v1/category", gin.H{"code": "CS-MEM", "organization": org.ID, "fee": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "name")

	w, env = a.do(http.MethodPost, "/api/v1/category", gin.H{"name": "Membership", "code": "CS-MEM", "organization": org.ID, "fee": 100})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	category := decode[idOnly](t, env)

	w, env = a.do(http.MethodPost, "/api/v1/student", gin.H{
		"studentId": "2021-00001", "firstName": "Alice", "lastName": "Reyes", "course": "BSCS", "yearLevel": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	student := decode[idOnly](t, env)

	w, env = a.do(http.MethodPost, "/api/v1/transaction", gin.H{"student": student.ID, "category": category.ID, "amount": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code, "payments cannot exceed the fee")

	w, env = a.do(http.MethodPost, "/api/v1/transaction", gin.H{"student": student.ID, "category": category.ID, "amount": 40})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	tx := decode[struct {
		ID        string `json:"id"`
		ReceiptNo string `json:"receiptNo"`
	}](t, env)
	assert.NotEmpty(t, tx.ReceiptNo)

	t.Run("list is paginated", func(t *testing.T) {
		w, env := a.do(http.MethodGet, "/api/v1/transaction?limit=1&search=reyes", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, env.Total)
		assert.Equal(t, 1, *env.Total)
		assert.Nil(t, env.Next)
		assert.Nil(t, env.Prev)

		w, _ = a.do(http.MethodGet, "/api/v1/transaction?from=2024-05-02&to=2024-05-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("balance", func(t *testing.T) {
		w, env := a.do(http.MethodGet, "/api/v1/student/"+student.ID+"/balance", nil)
		require.Equal(t, http.StatusOK, w.Code)
		lines := decode[[]struct {
			Remaining float64 `json:"remaining"`
			Status    string  `json:"status"`
		}](t, env)
		require.Len(t, lines, 1)
		assert.Equal(t, 60.0, lines[0].Remaining)
		assert.Equal(t, "partial", lines[0].Status)
	})

	t.Run("category with payments cannot be deleted", func(t *testing.T) {
		w, env := a.do(http.MethodDelete, "/api/v1/category/"+category.ID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("export and receipt", func(t *testing.T) {
		w, _ := a.do(http.MethodGet, "/api/v1/transaction/export?format=csv", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, w.Body.String(), "2021-00001")

		w, _ = a.do(http.MethodGet, "/api/v1/transaction/export?format=doc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = a.do(http.MethodGet, "/api/v1/transaction/"+tx.ID+"/receipt", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("terms are separate databases", func(t *testing.T) {
		w, env := a.do(http.MethodGet, "/api/v1/category?sem=2&year=2024", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(env.Data))

		w, _ = a.do(http.MethodGet, "/api/v1/category?sem=9", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("organization with categories cannot be deleted", func(t *testing.T) {
		w, _ := a.do(http.MethodDelete, "/api/v1/organization/"+org.ID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestStudentImportUpload(t *testing.T) {
	a := newAPI(t)
	a.login()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "students.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Student ID,Last Name,First Name,Course,Year Level\n" +
		"2021-00001,Reyes,Alice,BSCS,3\n" +
		"2022-00002,Cruz,Bob,BSIT,2\n" +
		",Nobody,No,BSIT,9\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/student/import/preview", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w, env := a.send(req)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	preview := decode[models.ImportPreview](t, env)
	assert.Equal(t, 2, preview.Valid)
	assert.Equal(t, 1, preview.Invalid)

	w, env = a.do(http.MethodPost, "/api/v1/student/import", gin.H{"rows": preview.Rows})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	result := decode[models.ImportResult](t, env)
	assert.Equal(t, 2, result.Inserted)
	assert.Len(t, result.Errors, 1)

	w, env = a.do(http.MethodGet, "/api/v1/student?course=BSIT", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Total)
	assert.Equal(t, 1, *env.Total)

	t.Run("unsupported file", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		part, err := form.CreateFormFile("file", "students.txt")
		require.NoError(t, err)
		_, _ = part.Write([]byte("hello"))
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/student/import/preview", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		w, _ := a.send(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
