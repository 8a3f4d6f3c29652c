package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/djenkins26/products-app/internal/middleware"
	"github.com/djenkins26/products-app/internal/models"
	"github.com/djenkins26/products-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type productBody struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

type productRequest struct {
	Product productBody `json:"product"`
}

// fieldName strips the envelope from a decoder path like "product.title".
func fieldName(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ProductHandler serves the /products resource.
type ProductHandler struct {
	products *service.ProductService
	log      zerolog.Logger
}

func NewProductHandler(products *service.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

// List returns every product in insertion order, optionally windowed by
// ?limit= and ?offset=.
func (h *ProductHandler) List(c *gin.Context) {
	opts := parseListOptions(c.Query("limit"), c.Query("offset"), maxPageLimit)

	products, err := h.products.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Create stores a product owned by the caller. Any owner in the body is
// ignored; a missing body fails validation like an empty product.
func (h *ProductHandler) Create(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	if caller == nil {
		respondError(c, h.log, service.ErrUnauthenticated)
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			respondError(c, h.log, &service.ValidationError{
				Fields: map[string]string{fieldName(typeErr.Field): "must be a string"},
			})
			return
		}
		respondBadBody(c)
		return
	}

	input := service.ProductInput{}
	if req.Product.Title != nil {
		input.Title = *req.Product.Title
	}
	if req.Product.Text != nil {
		input.Text = *req.Product.Text
	}

	product, err := h.products.Create(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// Update applies the supplied non-empty fields. An empty body is a no-op.
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadBody(c)
		return
	}

	patch := models.ProductPatch{Title: req.Product.Title, Text: req.Product.Text}
	if err := h.products.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), patch); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
