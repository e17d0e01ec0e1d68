package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/domain"
	"sweetshop/internal/service"
	resp "sweetshop/internal/transport/http/response"
)

type SweetHandler struct {
	svc *service.SweetService
}

func NewSweetHandler(svc *service.SweetService) *SweetHandler { return &SweetHandler{svc: svc} }

type createSweetIn struct {
	Name     string   `json:"name"     binding:"required,max=128"`
	Category string   `json:"category" binding:"required,max=64"`
	Price    *float64 `json:"price"    binding:"required,gte=0"`
	Quantity *int     `json:"quantity" binding:"omitempty,gte=0"`
}

// Create POST /api/sweets
func (h *SweetHandler) Create(c *gin.Context) {
	var in createSweetIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	qty := 0
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	sw, err := h.svc.Create(c.Request.Context(), service.CreateSweetInput{
		Name:     in.Name,
		Category: in.Category,
		Price:    *in.Price,
		Quantity: qty,
	})
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sw)
}

// List GET /api/sweets
func (h *SweetHandler) List(c *gin.Context) {
	items, err := h.svc.FindAll(c.Request.Context())
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Search GET /api/sweets/search?name=&category=
func (h *SweetHandler) Search(c *gin.Context) {
	items, err := h.svc.Search(c.Request.Context(), domain.SweetFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
	})
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Purchase POST /api/sweets/:id/purchase
func (h *SweetHandler) Purchase(c *gin.Context) {
	sw, err := h.svc.Purchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, sw)
}

type restockIn struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// Restock POST /api/sweets/:id/restock
func (h *SweetHandler) Restock(c *gin.Context) {
	var in restockIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, "quantity must be a positive number")
		return
	}
	sw, err := h.svc.Restock(c.Request.Context(), c.Param("id"), in.Quantity)
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sweet restocked successfully", "sweet": sw})
}

type updateSweetIn struct {
	Name     *string  `json:"name"     binding:"omitempty,max=128"`
	Category *string  `json:"category" binding:"omitempty,max=64"`
	Price    *float64 `json:"price"    binding:"omitempty,gte=0"`
	Quantity *int     `json:"quantity" binding:"omitempty,gte=0"`
}

// Update PUT /api/sweets/:id
func (h *SweetHandler) Update(c *gin.Context) {
	var in updateSweetIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	sw, err := h.svc.Update(c.Request.Context(), c.Param("id"), service.UpdateSweetInput{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Quantity: in.Quantity,
	})
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, sw)
}

// Delete DELETE /api/sweets/:id
func (h *SweetHandler) Delete(c *gin.Context) {
	sw, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sweet deleted successfully", "sweet": sw})
}
