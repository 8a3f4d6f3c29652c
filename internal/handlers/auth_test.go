package handlers

import (
	"net/http"
	"testing"

	"github.com/djenkins26/products-app/internal/models"
	"github.com/gin-gonic/gin"
)

func (f *handlerFixture) authRouter(caller *models.User) *gin.Engine {
	router := gin.New()
	router.Use(withTestUser(caller))
	router.POST("/sign-up", f.auth.SignUp)
	router.POST("/sign-in", f.auth.SignIn)
	router.DELETE("/sign-out", f.auth.SignOut)
	router.PATCH("/change-password", f.auth.ChangePassword)
	return router
}

func TestSignUpAndSignIn(t *testing.T) {
	f := newHandlerFixture(t)
	router := f.authRouter(nil)

	resp := performJSON(router, http.MethodPost, "/sign-up",
		`{"credentials":{"email":"Ada@Example.com","password":"secret","password_confirmation":"secret"}}`)
	mustStatus(t, resp.Code, http.StatusCreated)

	user := decodeBody(t, resp)["user"].(map[string]any)
	if user["email"] != "ada@example.com" {
		t.Fatalf("unexpected email %#v", user["email"])
	}
	if _, leaked := user["token"]; leaked {
		t.Fatalf("sign-up must not return the token")
	}

	resp = performJSON(router, http.MethodPost, "/sign-in",
		`{"credentials":{"email":"ada@example.com","password":"secret"}}`)
	mustStatus(t, resp.Code, http.StatusCreated)

	signedIn := decodeBody(t, resp)["user"].(map[string]any)
	token, _ := signedIn["token"].(string)
	if len(token) != 32 {
		t.Fatalf("expected 32 hex chars token, got %q", token)
	}
	if signedIn["id"] != user["id"] {
		t.Fatalf("sign-in returned another user: %#v vs %#v", signedIn["id"], user["id"])
	}
}

func TestSignUpRejectsDuplicateAndMismatch(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedUser("taken@example.com")
	router := f.authRouter(nil)

	resp := performJSON(router, http.MethodPost, "/sign-up",
		`{"credentials":{"email":"taken@example.com","password":"p","password_confirmation":"p"}}`)
	mustStatus(t, resp.Code, http.StatusConflict)

	resp = performJSON(router, http.MethodPost, "/sign-up",
		`{"credentials":{"email":"new@example.com","password":"p","password_confirmation":"q"}}`)
	mustStatus(t, resp.Code, http.StatusUnprocessableEntity)
	fields := decodeBody(t, resp)["fields"].(map[string]any)
	if _, ok := fields["password_confirmation"]; !ok {
		t.Fatalf("expected password_confirmation field, got %#v", fields)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	f := newHandlerFixture(t)
	router := f.authRouter(nil)

	mustStatus(t, performJSON(router, http.MethodPost, "/sign-up",
		`{"credentials":{"email":"ada@example.com","password":"secret","password_confirmation":"secret"}}`).Code,
		http.StatusCreated)

	resp := performJSON(router, http.MethodPost, "/sign-in",
		`{"credentials":{"email":"ada@example.com","password":"nope"}}`)
	mustStatus(t, resp.Code, http.StatusUnauthorized)

	resp = performJSON(router, http.MethodPost, "/sign-in",
		`{"credentials":{"email":"nobody@example.com","password":"secret"}}`)
	mustStatus(t, resp.Code, http.StatusUnauthorized)
}

func TestSignOutRequiresIdentity(t *testing.T) {
	f := newHandlerFixture(t)

	resp := performJSON(f.authRouter(nil), http.MethodDelete, "/sign-out", "")
	mustStatus(t, resp.Code, http.StatusUnauthorized)

	user := f.seedUser("ada@example.com")
	resp = performJSON(f.authRouter(user), http.MethodDelete, "/sign-out", "")
	mustStatus(t, resp.Code, http.StatusNoContent)
}

func TestChangePasswordValidation(t *testing.T) {
	f := newHandlerFixture(t)
	user := f.seedUser("ada@example.com")
	router := f.authRouter(user)

	resp := performJSON(router, http.MethodPatch, "/change-password", `{"passwords":{"old":"x","new":""}}`)
	mustStatus(t, resp.Code, http.StatusUnprocessableEntity)

	// The seeded hash is not bcrypt, so no old password can match.
	resp = performJSON(router, http.MethodPatch, "/change-password", `{"passwords":{"old":"x","new":"y"}}`)
	mustStatus(t, resp.Code, http.StatusUnauthorized)
}
