package api

import (
	"context"
	"net/http"
	"skillchain/internal/entity"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req entity.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.passports.CreateProduct(ctx, currentSubject(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	var query entity.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	factoryID, ok := queryUint(c, "factory_id")
	if !ok {
		return
	}
	query.FactoryID = factoryID

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	products, meta, err := h.passports.ListProducts(ctx, currentSubject(c), query)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.ProductListResponse{Products: products, Meta: meta})
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.passports.GetProduct(ctx, currentSubject(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req entity.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.passports.UpdateProduct(ctx, currentSubject(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *HTTPHandler) UploadProductImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	file, ok := readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	stored, err := h.passports.AddImage(ctx, currentSubject(c), id, file.Reader(), file.Filename(), file.ContentType())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.ImageUploadResponse{Message: "Image uploaded successfully", URL: stored.URL})
}

func (h *HTTPHandler) CreateBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req entity.BatchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	batch, err := h.batches.CreateBatch(ctx, currentSubject(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func (h *HTTPHandler) ListBatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	batches, err := h.batches.ListBatches(ctx, currentSubject(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// BatchQRCode streams the PNG code that links to a batch.
func (h *HTTPHandler) BatchQRCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	png, err := h.batches.BatchCode(ctx, currentSubject(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
