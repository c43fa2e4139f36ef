package constvars

// Validation messages, mapped by validator tag
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"min":      "must be at least %s",
	"uuid4":    "must be a valid identifier",
}

var TagsWithParams = map[string]bool{
	"gt":  true,
	"gte": true,
	"min": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientSelectAtLeastOneService       = "please select at least one service"
	ErrClientAppointmentNotFound           = "appointment not found"
	ErrClientResourceNotFound              = "the requested data is not available"
	ErrClientClinicUnavailable             = "the clinic service is unavailable, please try again"
	ErrClientSubmissionInProgress          = "the services for this appointment are being saved, please wait"
	ErrClientSubmissionAlreadyDone         = "the services for this appointment were already saved"
	ErrClientFlowNotFound                  = "this page has expired, please reopen the appointment"
	ErrClientFlowStillLoading              = "the appointment is still loading"
	ErrClientFlowClosed                    = "this page was closed"
)

// Error messages for developers
const (
	ErrDevInvalidInput            = "invalid input"
	ErrDevValidationFailed        = "validation failed"
	ErrDevCannotParseJSON         = "cannot parse JSON"
	ErrDevCannotMarshalJSON       = "cannot marshal JSON"
	ErrDevCreateHTTPRequest       = "failed to create HTTP request"
	ErrDevSendHTTPRequest         = "failed to send HTTP request"
	ErrDevServerProcess           = "failed to process request on server"
	ErrDevServerDeadlineExceeded  = "deadline exceeded"
	ErrDevMissingRequestID        = "request id missing from context"
	ErrDevURLParamIDValidation    = "failed to validate url param %s"
	ErrDevAuthTokenMissing        = "bearer token missing"
	ErrDevAuthTokenMalformed      = "bearer token malformed"
	ErrDevAuthTokenExpired        = "bearer token expired"
	ErrDevClinicAPIUnauthorized   = "clinic API rejected credential for %s"
	ErrDevClinicAPINotFound       = "clinic API has no %s"
	ErrDevClinicAPIServerError    = "clinic API server error on %s"
	ErrDevClinicAPIRejected       = "clinic API rejected request on %s"
	ErrDevClinicAPIUnreachable    = "clinic API unreachable for %s"
	ErrDevClinicAPIDecodeResponse = "failed to decode clinic API %s response"
	ErrDevClinicAPIRateLimited    = "clinic API rate limited %s"
	ErrDevClinicAPICanceled       = "clinic API call for %s canceled"
	ErrDevEmptySelection          = "submit called with empty selection"
	ErrDevSubmissionInProgress    = "a write is already in flight"
	ErrDevSubmissionLocked        = "submission lock for appointment %d held by another flow"
	ErrDevSubmissionSucceeded     = "flow already reached Succeeded"
	ErrDevFlowNotFound            = "flow %s not found"
	ErrDevFlowTornDown            = "flow torn down"
	ErrDevFlowLoading             = "flow still loading"
	ErrDevRedisGetData            = "failed to get data from redis"
	ErrDevRedisSetData            = "failed to set data into redis"
	ErrDevRedisDeleteData         = "failed to delete data from redis"
	ErrDevRedisUnlock             = "failed to release redis lock"
	ErrDevRabbitMQPublish         = "failed to publish message to queue %s"
	ErrDevMongoInsertDocument     = "failed to insert document into mongo collection %s"
	ErrDevMongoFindDocument       = "failed to find documents in mongo collection %s"
)

const (
	ErrFileLocationUnknown = "file location unknown"
	ErrLineLocationUnknown = "line location unknown"
	ErrFunctionNameUnknown = "function name unknown"
)
