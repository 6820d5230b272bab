package routes

import (
	"arm_backoffice/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathEstimates = "/estimates"
	PathInvoices  = "/invoices"
	PathCustomers = "/customers"
)

func addBillingRoutes(rg *gin.RouterGroup, estimateHandler *handlers.EstimateHandler, invoiceHandler *handlers.InvoiceHandler) {
	estimates := rg.Group(PathEstimates)
	{
		estimates.POST("", estimateHandler.SaveEstimate)
		estimates.PUT("", estimateHandler.SaveEstimate)
		estimates.GET("/:id", estimateHandler.GetEstimateByID)
		estimates.GET("/token/:token", estimateHandler.GetEstimateByToken)
		estimates.POST("/:id/send", estimateHandler.SendEstimate)
		estimates.POST("/:id/status", estimateHandler.MarkEstimateStatus)
		estimates.POST("/:id/convert", invoiceHandler.ConvertEstimate)
	}

	invoices := rg.Group(PathInvoices)
	{
		invoices.POST("", invoiceHandler.SaveInvoice)
		invoices.PUT("", invoiceHandler.SaveInvoice)
		invoices.GET("/:id", invoiceHandler.GetInvoiceByID)
		invoices.GET("/token/:token", invoiceHandler.GetInvoiceByToken)
		invoices.POST("/:id/status", invoiceHandler.MarkInvoiceStatus)
	}

	customers := rg.Group(PathCustomers)
	{
		customers.GET("/search", estimateHandler.SearchCustomers)
	}
}
