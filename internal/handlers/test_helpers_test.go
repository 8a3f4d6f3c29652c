package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/djenkins26/products-app/internal/middleware"
	"github.com/djenkins26/products-app/internal/models"
	"github.com/djenkins26/products-app/internal/repository"
	"github.com/djenkins26/products-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// handlerFixture wires handlers over a fresh in-memory store.
type handlerFixture struct {
	t        *testing.T
	store    *repository.Memory
	products *ProductHandler
	auth     *AuthHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemory()
	log := zerolog.Nop()
	return &handlerFixture{
		t:        t,
		store:    store,
		products: NewProductHandler(service.NewProductService(store.Products(), log), log),
		auth:     NewAuthHandler(service.NewAuthService(store.Users(), log), log),
	}
}

// seedUser stores a user directly, bypassing bcrypt.
func (f *handlerFixture) seedUser(email string) *models.User {
	f.t.Helper()
	user := &models.User{Email: email, HashedPassword: "unused", Token: "token-" + email}
	if err := f.store.Users().Create(context.Background(), user); err != nil {
		f.t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *handlerFixture) seedProduct(owner *models.User, title, text string) *models.Product {
	f.t.Helper()
	product := &models.Product{Title: title, Text: text, Owner: owner.ID}
	if err := f.store.Products().Create(context.Background(), product); err != nil {
		f.t.Fatalf("seed product: %v", err)
	}
	return product
}

func withTestUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			middleware.SetCurrentUser(c, user)
		}
		c.Next()
	}
}

func performJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v (body %q)", err, resp.Body.String())
	}
	return out
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func expectHTTP200(t *testing.T, status int) {
	t.Helper()
	mustStatus(t, status, http.StatusOK)
}
