package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/djenkins26/products-app/internal/models"
	"github.com/djenkins26/products-app/internal/repository"
	"github.com/djenkins26/products-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type brokenProducts struct {
	repository.ProductRepository
}

func (brokenProducts) List(context.Context, repository.ListOptions) ([]models.Product, error) {
	return nil, errors.New("connection reset by peer")
}

func (f *handlerFixture) productRouter(caller *models.User) *gin.Engine {
	router := gin.New()
	router.Use(withTestUser(caller))
	router.GET("/products", f.products.List)
	router.GET("/products/:id", f.products.Get)
	router.POST("/products", f.products.Create)
	router.PATCH("/products/:id", f.products.Update)
	router.DELETE("/products/:id", f.products.Delete)
	return router
}

func TestListProductsWindow(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedUser("owner@example.com")
	for _, title := range []string{"a", "b", "c", "d"} {
		f.seedProduct(owner, title, "text")
	}
	router := f.productRouter(nil)

	resp := performJSON(router, http.MethodGet, "/products", "")
	expectHTTP200(t, resp.Code)
	if got := len(decodeBody(t, resp)["products"].([]any)); got != 4 {
		t.Fatalf("expected all 4 products, got %d", got)
	}

	resp = performJSON(router, http.MethodGet, "/products?limit=2&offset=1", "")
	expectHTTP200(t, resp.Code)
	products := decodeBody(t, resp)["products"].([]any)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if title := products[0].(map[string]any)["title"]; title != "b" {
		t.Fatalf("expected window to start at b, got %#v", title)
	}
}

func TestListProductsEmptyIsArray(t *testing.T) {
	f := newHandlerFixture(t)

	resp := performJSON(f.productRouter(nil), http.MethodGet, "/products", "")
	expectHTTP200(t, resp.Code)
	if resp.Body.String() != `{"products":[]}` {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestListProductsStoreFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()
	handler := NewProductHandler(service.NewProductService(brokenProducts{}, log), log)

	router := gin.New()
	router.GET("/products", handler.List)

	resp := performJSON(router, http.MethodGet, "/products", "")
	mustStatus(t, resp.Code, http.StatusInternalServerError)
	if msg := decodeBody(t, resp)["error"]; msg != "Internal server error" {
		t.Fatalf("store error leaked: %#v", msg)
	}
}

func TestCreateProductMalformedJSON(t *testing.T) {
	f := newHandlerFixture(t)
	caller := f.seedUser("caller@example.com")

	resp := performJSON(f.productRouter(caller), http.MethodPost, "/products", `{"product":`)
	mustStatus(t, resp.Code, http.StatusBadRequest)
}

func TestCreateProductValidationFields(t *testing.T) {
	f := newHandlerFixture(t)
	caller := f.seedUser("caller@example.com")

	resp := performJSON(f.productRouter(caller), http.MethodPost, "/products", `{"product":{"title":""}}`)
	mustStatus(t, resp.Code, http.StatusUnprocessableEntity)

	fields := decodeBody(t, resp)["fields"].(map[string]any)
	if fields["title"] != "is required" || fields["text"] != "is required" {
		t.Fatalf("unexpected fields %#v", fields)
	}
	if count, _ := f.store.Products().Count(context.Background()); count != 0 {
		t.Fatalf("invalid product was persisted")
	}
}

func TestCreateProductIgnoresOwnerInBody(t *testing.T) {
	f := newHandlerFixture(t)
	caller := f.seedUser("caller@example.com")

	resp := performJSON(f.productRouter(caller), http.MethodPost, "/products",
		`{"product":{"title":"Lamp","text":"Brass","owner":"someone-else"}}`)
	mustStatus(t, resp.Code, http.StatusCreated)

	product := decodeBody(t, resp)["product"].(map[string]any)
	if product["owner"] != caller.ID {
		t.Fatalf("expected owner %q, got %#v", caller.ID, product["owner"])
	}
}

func TestUpdateProductEmptyBodyIsNoop(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedUser("owner@example.com")
	product := f.seedProduct(owner, "Lamp", "Brass")

	resp := performJSON(f.productRouter(owner), http.MethodPatch, "/products/"+product.ID, "")
	mustStatus(t, resp.Code, http.StatusNoContent)
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}

	stored, err := f.store.Products().FindByID(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Title != "Lamp" || stored.Text != "Brass" {
		t.Fatalf("product changed: %+v", stored)
	}
}

func TestUpdateProductMalformedJSON(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedUser("owner@example.com")
	product := f.seedProduct(owner, "Lamp", "Brass")

	resp := performJSON(f.productRouter(owner), http.MethodPatch, "/products/"+product.ID, `{"product":[`)
	mustStatus(t, resp.Code, http.StatusBadRequest)
}

func TestMutationsWithoutIdentityAre401(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedUser("owner@example.com")
	product := f.seedProduct(owner, "Lamp", "Brass")
	router := f.productRouter(nil)

	mustStatus(t, performJSON(router, http.MethodPatch, "/products/"+product.ID, `{"product":{"title":"x"}}`).Code, http.StatusUnauthorized)
	mustStatus(t, performJSON(router, http.MethodDelete, "/products/"+product.ID, "").Code, http.StatusUnauthorized)
	mustStatus(t, performJSON(router, http.MethodPost, "/products", `{"product":{"title":"x","text":"y"}}`).Code, http.StatusUnauthorized)
}

func TestGetProductMalformedIDIs404(t *testing.T) {
	f := newHandlerFixture(t)

	resp := performJSON(f.productRouter(nil), http.MethodGet, "/products/not-an-id", "")
	mustStatus(t, resp.Code, http.StatusNotFound)
}

func TestCreateProductMissingBodyIs422(t *testing.T) {
	f := newHandlerFixture(t)
	caller := f.seedUser("caller@example.com")
	router := f.productRouter(caller)

	for _, body := range []string{"", "{}"} {
		resp := performJSON(router, http.MethodPost, "/products", body)
		mustStatus(t, resp.Code, http.StatusUnprocessableEntity)

		fields := decodeBody(t, resp)["fields"].(map[string]any)
		if fields["title"] != "is required" || fields["text"] != "is required" {
			t.Fatalf("body %q: unexpected fields %#v", body, fields)
		}
	}
}

func TestCreateProductWrongFieldTypeIs422(t *testing.T) {
	f := newHandlerFixture(t)
	caller := f.seedUser("caller@example.com")

	resp := performJSON(f.productRouter(caller), http.MethodPost, "/products", `{"product":{"title":123,"text":"x"}}`)
	mustStatus(t, resp.Code, http.StatusUnprocessableEntity)

	fields := decodeBody(t, resp)["fields"].(map[string]any)
	if fields["title"] != "must be a string" {
		t.Fatalf("unexpected fields %#v", fields)
	}
	if count, _ := f.store.Products().Count(context.Background()); count != 0 {
		t.Fatalf("invalid product was persisted")
	}
}

func TestCreateProductWithoutIdentityIs401BeforeBody(t *testing.T) {
	f := newHandlerFixture(t)

	resp := performJSON(f.productRouter(nil), http.MethodPost, "/products", `{"product":{"title":123}}`)
	mustStatus(t, resp.Code, http.StatusUnauthorized)
}
