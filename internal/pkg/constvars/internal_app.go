package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_CREDENTIAL_KEY           ContextKey = "credential"
)

const (
	REQUEST_ID_PREFIX = "CLNDSK_SVC_"
)

const (
	AppEnvDevelopment = "development"
	AppEnvProduction  = "production"
)

const (
	URLParamFlowID        = "flow_id"
	URLParamAppointmentID = "appointment_id"
)
