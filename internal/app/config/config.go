package config

import (
	"clinicdesk-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "clinicdesk"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                      utils.GetEnvString("APP_ENV", "development"),
			Port:                     utils.GetEnvString("APP_PORT", ":8080"),
			Version:                  utils.GetEnvString("APP_VERSION", "v1"),
			Timezone:                 utils.GetEnvString("APP_TIMEZONE", "Asia/Jakarta"),
			EndpointPrefix:           utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:              utils.GetEnvInt("APP_MAX_REQUESTS", 20),
			ShutdownTimeoutInSeconds: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			RequestTimeoutInSeconds:  utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 30),
		},
		ClinicAPI: ClinicAPI{
			BaseUrl:                      utils.GetEnvString("CLINIC_API_BASE_URL", "http://localhost:3000/api"),
			TimeoutInSeconds:             utils.GetEnvInt("CLINIC_API_TIMEOUT_IN_SECONDS", 10),
			MaxRetries:                   utils.GetEnvInt("CLINIC_API_MAX_RETRIES", 2),
			RetryBaseDelayInMilliseconds: utils.GetEnvInt("CLINIC_API_RETRY_BASE_DELAY_IN_MILLISECONDS", 200),
			RequestsPerSecond:            utils.GetEnvFloat("CLINIC_API_REQUESTS_PER_SECOND", 10),
			Burst:                        utils.GetEnvInt("CLINIC_API_BURST", 20),
		},
		Flow: Flow{
			IdleTimeoutInMinutes:       utils.GetEnvInt("APP_FLOW_IDLE_TIMEOUT_IN_MINUTES", 30),
			SweepIntervalInSeconds:     utils.GetEnvInt("APP_FLOW_SWEEP_INTERVAL_IN_SECONDS", 60),
			CatalogCacheTTLInSeconds:   utils.GetEnvInt("APP_CATALOG_CACHE_TTL_IN_SECONDS", 300),
			SubmissionLockTTLInSeconds: utils.GetEnvInt("APP_SUBMISSION_LOCK_TTL_IN_SECONDS", 30),
			LoadTimeoutInSeconds:       utils.GetEnvInt("APP_FLOW_LOAD_TIMEOUT_IN_SECONDS", 30),
			PublishReceipts:            utils.GetEnvBool("APP_PUBLISH_RECEIPTS", true),
		},
		RabbitMQ: AppRabbitMQ{
			ReceiptQueue: utils.GetEnvString("APP_RABBITMQ_RECEIPT_QUEUE", "service_assignment_receipts"),
		},
	}
}
