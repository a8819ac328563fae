package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agrimarket/internal/auth"
	"agrimarket/internal/models"
	"agrimarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	identity *service.IdentityService
	catalog  *service.CatalogService
	cart     *service.CartService
	checkout *service.CheckoutService
	reports  *service.ReportService
	tokens   *auth.Manager
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identity *service.IdentityService,
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	reports *service.ReportService,
	tokens *auth.Manager,
) *Handler {
	return &Handler{
		identity: identity,
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		reports:  reports,
		tokens:   tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/register", h.register)
		v1.POST("/login", h.login)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		authed := v1.Group("")
		authed.Use(authRequired(h.tokens))
		{
			authed.POST("/products", h.addProduct)
			authed.GET("/cart", h.viewCart)
			authed.POST("/cart/items", h.addToCart)
			authed.DELETE("/cart", h.clearCart)
			authed.POST("/checkout", h.doCheckout)
			authed.GET("/orders/:id", h.getOrder)
			authed.POST("/feedback", h.submitFeedback)
			authed.GET("/admin/dashboard", h.adminDashboard)
		}
	}
}

// respondError maps the error taxonomy to HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// register handles account creation
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.identity.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login verifies credentials and returns a token plus the user's role so
// the client can route to the right landing view
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	token, user, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
	})
}

// listProducts handles the public catalog listing
func (h *Handler) listProducts(c *gin.Context) {
	category := c.Query("category")
	if category == "all" {
		category = ""
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles single product lookup
func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// addProduct handles a seller listing a product
func (h *Handler) addProduct(c *gin.Context) {
	var req service.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.AddProduct(c.Request.Context(), identityFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// addToCart handles a buyer adding a product to the cart
func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	err := h.cart.AddToCart(c.Request.Context(), identityFromContext(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart"})
}

// viewCart handles the buyer's cart view
func (h *Handler) viewCart(c *gin.Context) {
	items, total, err := h.cart.GetCart(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":        items,
		"total_amount": total,
	})
}

// clearCart handles emptying the buyer's cart
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cart.ClearCart(c.Request.Context(), identityFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	PaymentMode string `json:"payment_mode" binding:"required"`
}

// doCheckout drains the buyer's cart into an order
func (h *Handler) doCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), identityFromContext(c), req.PaymentMode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// getOrder handles the order confirmation view
func (h *Handler) getOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.checkout.GetOrder(c.Request.Context(), identityFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message" binding:"required"`
}

// submitFeedback handles feedback from any authenticated user
func (h *Handler) submitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	fb, err := h.reports.SubmitFeedback(c.Request.Context(), identityFromContext(c), req.Rating, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// adminDashboard handles the admin aggregate view
func (h *Handler) adminDashboard(c *gin.Context) {
	dashboard, err := h.reports.GetDashboard(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
