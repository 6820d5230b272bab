package routes

import (
	"log"
	"os"
	"strconv"

	_ "arm_backoffice/docs" // generated swagger spec
	"arm_backoffice/internal/adapter/http/handlers"
	"arm_backoffice/internal/adapter/persistence/repository"
	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/infrastructure/database"
	"arm_backoffice/internal/infrastructure/notify"
	"arm_backoffice/internal/usecase"
	"arm_backoffice/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()

	estimateRepo := repository.NewEstimateDynamoRepository(ddb)
	invoiceRepo := repository.NewInvoiceDynamoRepository(ddb)
	customerRepo := repository.NewCustomerDynamoRepository(ddb)
	auditRepo := repository.NewAuditDynamoRepository(ddb)

	var notifier interfaces.INotificationDispatcher
	sms, err := notify.NewTwilioSMSDispatcher(
		os.Getenv("TWILIO_ACCOUNT_SID"),
		os.Getenv("TWILIO_AUTH_TOKEN"),
		os.Getenv("TWILIO_FROM_NUMBER"),
	)
	if err != nil {
		log.Printf("SMS dispatcher not configured: %v", err)
	} else {
		notifier = sms
	}

	taxApply := entities.TaxApplyMode(os.Getenv("TAX_APPLY_MODE"))
	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")

	estimateUseCase := usecase.NewEstimateUseCase(estimateRepo, customerRepo, auditRepo, notifier, taxApply, publicBaseURL)
	invoiceUseCase := usecase.NewInvoiceUseCase(invoiceRepo, estimateRepo, auditRepo)

	estimateHandler := handlers.NewEstimateHandler(estimateUseCase)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addBillingRoutes(v1, estimateHandler, invoiceHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
