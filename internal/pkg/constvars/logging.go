package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingDataKey           = "data"
	LoggingRequestKey        = "request"
	LoggingResponseKey       = "response"
	LoggingResponseLengthKey = "response_length"
	LoggingErrorCodeKey      = "error_code"
	LoggingErrorMessageKey   = "error_message"
	LoggingOperationKey      = "operation"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"

	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingQueryKey      = "query"
	LoggingStatusCodeKey = "status_code"
	LoggingUrlKey        = "url"
	LoggingAttemptKey    = "attempt"
	LoggingRetryAfterKey = "retry_after"

	LoggingFlowIDKey             = "flow_id"
	LoggingAppointmentIDKey      = "appointment_id"
	LoggingServiceIDKey          = "service_id"
	LoggingServiceIDsKey         = "service_ids"
	LoggingCatalogCountKey       = "catalog_count"
	LoggingSelectionCountKey     = "selection_count"
	LoggingSubmissionStateKey    = "submission_state"
	LoggingPreviousStateKey      = "previous_state"
	LoggingComputedTotalKey      = "computed_total"
	LoggingAuthoritativeTotalKey = "authoritative_total"
	LoggingFlowCountKey          = "flow_count"
	LoggingPriceKey              = "price"

	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
	LoggingQueueNameKey          = "queue_name"
	LoggingReceiptIDKey          = "receipt_id"
)
