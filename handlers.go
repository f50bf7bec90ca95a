package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmretail/pos_backend/models"
	"github.com/mmretail/pos_backend/utils"
)

func registerRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1.POST("/sales", createSaleHandler)
	v1.GET("/sales", listSalesHandler)
	v1.GET("/sales/:id", getSaleHandler)
	v1.POST("/sales/:id/void", voidSaleHandler)

	v1.GET("/reports/sales-summary", salesSummaryHandler)
	v1.GET("/reports/sales-summary/export", salesSummaryExportHandler)
	v1.GET("/reports/top-products", topProductsHandler)
	v1.GET("/reports/revenue-trends", revenueTrendsHandler)

	v1.POST("/products", createProductHandler)
	v1.GET("/products", listProductsHandler)
	v1.GET("/products/low-stock", lowStockProductsHandler)
	v1.GET("/products/:id", getProductHandler)
	v1.PATCH("/products/:id", updateProductHandler)

	v1.POST("/categories", createCategoryHandler)
	v1.GET("/categories", listCategoriesHandler)
	v1.POST("/suppliers", createSupplierHandler)
	v1.GET("/suppliers", listSuppliersHandler)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Integrity errors deliberately surface as 500 so they alarm instead of
// blending in with ordinary conflicts.
func writeEngineError(c *gin.Context, err error) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
		return
	}

	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error(), "entity": notFound.Entity, "id": notFound.ID})
		return
	}

	var insufficient *models.InsufficientStockError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      insufficient.Error(),
			"product_id": insufficient.ProductId,
			"available":  insufficient.Available,
			"requested":  insufficient.Requested,
		})
		return
	}

	var alreadyVoid *models.AlreadyVoidError
	if errors.As(err, &alreadyVoid) {
		c.JSON(http.StatusConflict, gin.H{"error": alreadyVoid.Error(), "sale_id": alreadyVoid.SaleId})
		return
	}

	var integrity *models.IntegrityError
	if errors.As(err, &integrity) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "stock integrity at risk; operator intervention required",
			"sale_id":    integrity.SaleId,
			"product_id": integrity.ProductId,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func createSaleHandler(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := models.CreateSale(c.Request.Context(), &input)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

func getSaleHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

func listSalesHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	includeVoid := c.Query("include_void") == "true"

	sales, err := models.GetSales(c.Request.Context(), models.ListSalesInput{
		Limit:       limit,
		Offset:      offset,
		IncludeVoid: includeVoid,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func voidSaleHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	actorId, _ := utils.GetCashierIdFromContext(c.Request.Context())
	sale, err := models.VoidSale(c.Request.Context(), id, actorId)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

func createProductHandler(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func getProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func listProductsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := models.GetProducts(c.Request.Context(), limit, offset)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func lowStockProductsHandler(c *gin.Context) {
	products, err := models.GetLowStockProducts(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func updateProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	var input models.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func createCategoryHandler(c *gin.Context) {
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := models.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

func listCategoriesHandler(c *gin.Context) {
	categories, err := models.GetCategories(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

func listSuppliersHandler(c *gin.Context) {
	suppliers, err := models.GetSuppliers(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}
