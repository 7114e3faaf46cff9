package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catalog-backoffice/product-api/internal/api/metrics"
	"github.com/catalog-backoffice/product-api/internal/api/response"
	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/core/service"
)

// ProductHandler handles HTTP requests for catalog operations.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// --- Request / Response types ---

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Photo       string  `json:"photo"`
}

func (r productRequest) toInput() ports.ProductInput {
	return ports.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Photo:       r.Photo,
	}
}

type listProductsQuery struct {
	Page  int `query:"page"  validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

type listProductsResponse struct {
	Items      []*domain.Product `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// --- Handlers ---

// Create adds a product to the catalog.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  response.Envelope{data=domain.Product}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, domain.MsgInvalidPayload)
	}

	p, err := h.service.Create(c.Request().Context(), req.toInput())
	metrics.ProductMutationsTotal.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, service.MsgProductCreated, p)
}

// Update replaces a product's writable fields.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Product id"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  response.Envelope{data=domain.Product}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req productRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, domain.MsgInvalidPayload)
	}

	p, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	metrics.ProductMutationsTotal.WithLabelValues("update", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, service.MsgProductUpdated, p)
}

// Delete removes a product.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	msg, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	metrics.ProductMutationsTotal.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, msg, nil)
}

// Get returns a single product.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  response.Envelope{data=domain.Product}
// @Failure      404  {object}  response.Envelope
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "", p)
}

// List returns a page of products, newest first.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  response.Envelope{data=listProductsResponse}
// @Failure      400    {object}  response.Envelope
// @Router       /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	var q listProductsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}
	if err := c.Validate(q); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), ports.ListProductsInput{Page: q.Page, Limit: q.Limit})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "", listProductsResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}
