package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/models"
	"github.com/xuri/excelize/v2"
)

// parseReportRange reads start/end query params (YYYY-MM-DD). Both days are
// inclusive; models.reportWindow expands them to UTC day boundaries.
func parseReportRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func salesSummaryHandler(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}

	summary, err := models.GetSalesSummary(c.Request.Context(), start, end)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func topProductsHandler(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := models.GetTopProducts(c.Request.Context(), start, end, limit)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func revenueTrendsHandler(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}
	granularity := models.TrendGranularity(c.DefaultQuery("granularity", "day"))

	// Sparse result: buckets without activity are omitted, not zero-filled.
	buckets, err := models.GetRevenueTrends(c.Request.Context(), start, end, granularity)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

func salesSummaryExportHandler(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}

	summary, err := models.GetSalesSummary(c.Request.Context(), start, end)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	topProducts, err := models.GetTopProducts(c.Request.Context(), start, end, 10)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		writeEngineError(c, err)
		return
	}
	f.SetCellValue(sheet, "A1", "Period")
	f.SetCellValue(sheet, "B1", fmt.Sprintf("%s - %s", c.Query("start"), c.Query("end")))
	f.SetCellValue(sheet, "A2", "Sales count")
	f.SetCellValue(sheet, "B2", summary.Count)
	f.SetCellValue(sheet, "A3", "Revenue")
	f.SetCellValue(sheet, "B3", summary.Revenue.String())
	f.SetCellValue(sheet, "A4", "Tax")
	f.SetCellValue(sheet, "B4", summary.Tax.String())
	f.SetCellValue(sheet, "A5", "Average sale")
	f.SetCellValue(sheet, "B5", summary.Average.String())

	f.SetCellValue(sheet, "A7", "Product")
	f.SetCellValue(sheet, "B7", "Quantity")
	f.SetCellValue(sheet, "C7", "Revenue")
	for i, p := range topProducts {
		row := 8 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.TotalQuantity)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.TotalRevenue.String())
	}

	filename := fmt.Sprintf("sales-summary_%s_%s.xlsx", c.Query("start"), c.Query("end"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		config.LogError(config.GetLogger(), "reports.go", "salesSummaryExportHandler", "write xlsx", nil, err)
	}
}
