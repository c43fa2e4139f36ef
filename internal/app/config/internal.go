package config

type InternalConfig struct {
	App       App         `mapstructure:"app"`
	ClinicAPI ClinicAPI   `mapstructure:"clinic_api"`
	Flow      Flow        `mapstructure:"flow"`
	RabbitMQ  AppRabbitMQ `mapstructure:"rabbitmq"`
}

type App struct {
	Env                      string `mapstructure:"env"`
	Port                     string `mapstructure:"port"`
	Version                  string `mapstructure:"version"`
	Timezone                 string `mapstructure:"timezone"`
	EndpointPrefix           string `mapstructure:"endpoint_prefix"`
	MaxRequests              int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds int    `mapstructure:"shutdown_timeout_in_seconds"`
	RequestTimeoutInSeconds  int    `mapstructure:"request_timeout_in_seconds"`
}

// ClinicAPI configures the upstream clinic API consumed by the sources.
type ClinicAPI struct {
	BaseUrl          string `mapstructure:"base_url"`
	TimeoutInSeconds int    `mapstructure:"timeout_in_seconds"`
	// MaxRetries applies to reads only; writes are never retried.
	MaxRetries                   int     `mapstructure:"max_retries"`
	RetryBaseDelayInMilliseconds int     `mapstructure:"retry_base_delay_in_milliseconds"`
	RequestsPerSecond            float64 `mapstructure:"requests_per_second"`
	Burst                        int     `mapstructure:"burst"`
}

type Flow struct {
	IdleTimeoutInMinutes       int  `mapstructure:"idle_timeout_in_minutes"`
	SweepIntervalInSeconds     int  `mapstructure:"sweep_interval_in_seconds"`
	CatalogCacheTTLInSeconds   int  `mapstructure:"catalog_cache_ttl_in_seconds"`
	SubmissionLockTTLInSeconds int  `mapstructure:"submission_lock_ttl_in_seconds"`
	LoadTimeoutInSeconds       int  `mapstructure:"load_timeout_in_seconds"`
	PublishReceipts            bool `mapstructure:"publish_receipts"`
}

type AppRabbitMQ struct {
	ReceiptQueue string `mapstructure:"receipt_queue"`
}
