package controllers

import (
	"errors"
	"net/http"

	"stockwatch/services"

	"github.com/gin-gonic/gin"
)

// AdminController exposes the monitor's administrative operations.
type AdminController struct {
	server *services.StockServer
}

// NewAdminController creates a new admin controller
func NewAdminController(server *services.StockServer) *AdminController {
	return &AdminController{server: server}
}

// SayHello reports that the monitor is alive.
// GET /api/admin/hello
func (ac *AdminController) SayHello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": ac.server.SayHello()})
}

// GetLastPrices returns the latest known price per tracked stock.
// GET /api/admin/lastprices
func (ac *AdminController) GetLastPrices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": ac.server.GetLastPrices()})
}

// GetLastPriceHistories returns recent stored sessions per stock.
// GET /api/admin/pricehistories
func (ac *AdminController) GetLastPriceHistories(c *gin.Context) {
	histories, err := ac.server.GetLastPriceHistories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load price histories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": histories})
}

// AddStockRequest is the payload for adding a tracked stock.
type AddStockRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// AddStock starts tracking a new stock.
// POST /api/admin/stocks
func (ac *AdminController) AddStock(c *gin.Context) {
	var req AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and name are required"})
		return
	}

	if err := ac.server.AddStock(req.Code, req.Name); err != nil {
		if errors.Is(err, services.ErrStockExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Success"})
}

// DeleteStock stops tracking a stock.
// DELETE /api/admin/stocks/:code
func (ac *AdminController) DeleteStock(c *gin.Context) {
	if err := ac.server.DeleteStock(c.Param("code")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success"})
}

// ForcePrices triggers a fetch-evaluate cycle immediately.
// POST /api/admin/forceprices
func (ac *AdminController) ForcePrices(c *gin.Context) {
	go ac.server.ForcePrices()
	c.JSON(http.StatusAccepted, gin.H{"message": "Price check started"})
}

// GetQuotes returns the in-memory quote snapshot.
// GET /api/admin/quotes
func (ac *AdminController) GetQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":       ac.server.Quotes(),
		"last_cycle": ac.server.LastCycleTime(),
	})
}
