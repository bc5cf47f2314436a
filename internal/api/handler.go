package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-service/config"
	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	checkoutService *service.CheckoutService
	catalogService  *service.CatalogService
	dispatcher      *service.OutcomeDispatcher
	gatewayClient   *gateway.Client
	midtransCfg     config.MidtransConfig
	adminToken      string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	checkoutService *service.CheckoutService,
	catalogService *service.CatalogService,
	dispatcher *service.OutcomeDispatcher,
	gatewayClient *gateway.Client,
	midtransCfg config.MidtransConfig,
	adminToken string,
) *Handler {
	return &Handler{
		checkoutService: checkoutService,
		catalogService:  catalogService,
		dispatcher:      dispatcher,
		gatewayClient:   gatewayClient,
		midtransCfg:     midtransCfg,
		adminToken:      adminToken,
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

	// The token endpoint keeps its original root-level path and answers its
	// own CORS preflight.
	router.OPTIONS("/create-payment-token", h.tokenPreflight)
	router.POST("/create-payment-token", h.createPaymentToken)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/courses", h.listCourses)
		v1.GET("/courses/:id", h.getCourse)
		v1.GET("/categories", h.listCategories)
		v1.GET("/pricing-plans", h.listPricingPlans)
		v1.GET("/faqs", h.listFAQs)
		v1.GET("/testimonials", h.listTestimonials)
		v1.GET("/landing-sections", h.listLandingSections)
		v1.GET("/payment-settings", h.getPaymentSettings)

		v1.POST("/checkout", h.checkout)
		v1.GET("/checkout/:orderId", h.getCheckoutAttempt)
		v1.POST("/checkout/:orderId/outcome", h.deliverOutcome)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(adminAuth(h.adminToken))
	{
		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.POST("/courses", h.createCourse)
		admin.PUT("/courses/:id", h.updateCourse)
		admin.DELETE("/courses/:id", h.deleteCourse)

		admin.POST("/categories", h.createCategory)
		admin.PUT("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.POST("/pricing-plans", h.createPricingPlan)
		admin.PUT("/pricing-plans/:id", h.updatePricingPlan)
		admin.DELETE("/pricing-plans/:id", h.deletePricingPlan)

		admin.POST("/faqs", h.createFAQ)
		admin.PUT("/faqs/:id", h.updateFAQ)
		admin.DELETE("/faqs/:id", h.deleteFAQ)

		admin.POST("/testimonials", h.createTestimonial)
		admin.PUT("/testimonials/:id", h.updateTestimonial)
		admin.DELETE("/testimonials/:id", h.deleteTestimonial)

		admin.POST("/landing-sections", h.createLandingSection)
		admin.PUT("/landing-sections/:id", h.updateLandingSection)
		admin.DELETE("/landing-sections/:id", h.deleteLandingSection)

		admin.PUT("/payment-settings", h.updatePaymentSettings)
		admin.DELETE("/payment-settings/qris", h.clearQrisImage)
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

// checkout handles a buyer's checkout submission
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	result, err := h.checkoutService.RequestToken(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrIncompleteForm) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process payment",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// getCheckoutAttempt returns the state of a checkout attempt
func (h *Handler) getCheckoutAttempt(c *gin.Context) {
	attempt, err := h.checkoutService.GetAttempt(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// deliverOutcome receives the popup's terminal result for an attempt
func (h *Handler) deliverOutcome(c *gin.Context) {
	var req struct {
		Outcome string `json:"outcome" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing outcome"})
		return
	}

	err := h.dispatcher.Deliver(c.Request.Context(), c.Param("orderId"), req.Outcome)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownOutcome):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrOutcomeAlreadyDelivered):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case strings.Contains(err.Error(), "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// getPaymentSettings returns the QRIS image and the public popup bootstrap
// values. The client key stored in settings wins over the configured one.
func (h *Handler) getPaymentSettings(c *gin.Context) {
	settings, err := h.catalogService.GetPaymentSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	clientKey := settings.ClientKey
	if clientKey == "" {
		clientKey = h.midtransCfg.ClientKey
	}

	c.JSON(http.StatusOK, gin.H{
		"qris_image_url":  settings.QrisImageURL,
		"client_key":      clientKey,
		"snap_script_url": h.midtransCfg.SnapScriptURL,
	})
}

// updatePaymentSettings upserts the merchant payment configuration
func (h *Handler) updatePaymentSettings(c *gin.Context) {
	var settings models.PaymentSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalogService.SavePaymentSettings(c.Request.Context(), &settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// clearQrisImage removes the stored QRIS image
func (h *Handler) clearQrisImage(c *gin.Context) {
	if err := h.catalogService.ClearQrisImage(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// listProducts lists products, optionally filtered by category
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

// getProduct returns a single product
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.catalogService.CreateProduct(c.Request.Context(), &p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	p.ID = c.Param("id")
	if err := h.catalogService.UpdateProduct(c.Request.Context(), &p); err != nil {
		status := statusForMutationError(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// listCourses lists courses, optionally filtered by category
func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.catalogService.ListCourses(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) getCourse(c *gin.Context) {
	course, err := h.catalogService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) createCourse(c *gin.Context) {
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.catalogService.CreateCourse(c.Request.Context(), &course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *Handler) updateCourse(c *gin.Context) {
	var course models.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	course.ID = c.Param("id")
	if err := h.catalogService.UpdateCourse(c.Request.Context(), &course); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) deleteCourse(c *gin.Context) {
	if err := h.catalogService.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) createCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.catalogService.CreateCategory(c.Request.Context(), &category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	category.ID = c.Param("id")
	if err := h.catalogService.UpdateCategory(c.Request.Context(), &category); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listPricingPlans(c *gin.Context) {
	plans, err := h.catalogService.ListPricingPlans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) createPricingPlan(c *gin.Context) {
	var plan models.PricingPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.catalogService.CreatePricingPlan(c.Request.Context(), &plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *Handler) updatePricingPlan(c *gin.Context) {
	var plan models.PricingPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	plan.ID = c.Param("id")
	if err := h.catalogService.UpdatePricingPlan(c.Request.Context(), &plan); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) deletePricingPlan(c *gin.Context) {
	if err := h.catalogService.DeletePricingPlan(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listFAQs(c *gin.Context) {
	faqs, err := h.catalogService.ListFAQs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, faqs)
}

func (h *Handler) createFAQ(c *gin.Context) {
	var faq models.FAQ
	if err := c.ShouldBindJSON(&faq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.catalogService.CreateFAQ(c.Request.Context(), &faq); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, faq)
}

func (h *Handler) updateFAQ(c *gin.Context) {
	var faq models.FAQ
	if err := c.ShouldBindJSON(&faq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	faq.ID = c.Param("id")
	if err := h.catalogService.UpdateFAQ(c.Request.Context(), &faq); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, faq)
}

func (h *Handler) deleteFAQ(c *gin.Context) {
	if err := h.catalogService.DeleteFAQ(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listTestimonials(c *gin.Context) {
	testimonials, err := h.catalogService.ListTestimonials(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, testimonials)
}

func (h *Handler) createTestimonial(c *gin.Context) {
	var t models.Testimonial
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.catalogService.CreateTestimonial(c.Request.Context(), &t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) updateTestimonial(c *gin.Context) {
	var t models.Testimonial
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	t.ID = c.Param("id")
	if err := h.catalogService.UpdateTestimonial(c.Request.Context(), &t); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) deleteTestimonial(c *gin.Context) {
	if err := h.catalogService.DeleteTestimonial(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listLandingSections(c *gin.Context) {
	sections, err := h.catalogService.ListLandingSections(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sections)
}

func (h *Handler) createLandingSection(c *gin.Context) {
	var section models.LandingSection
	if err := c.ShouldBindJSON(&section); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := h.catalogService.CreateLandingSection(c.Request.Context(), &section); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, section)
}

func (h *Handler) updateLandingSection(c *gin.Context) {
	var section models.LandingSection
	if err := c.ShouldBindJSON(&section); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	section.ID = c.Param("id")
	if err := h.catalogService.UpdateLandingSection(c.Request.Context(), &section); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *Handler) deleteLandingSection(c *gin.Context) {
	if err := h.catalogService.DeleteLandingSection(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForMutationError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func statusForMutationError(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
