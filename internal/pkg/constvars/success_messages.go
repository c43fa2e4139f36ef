package constvars

const (
	ResponseUnknown = "unknown"

	FlowOpenedSuccessMessage      = "appointment loaded"
	FlowFetchedSuccessMessage     = "appointment flow fetched"
	ServiceToggledSuccessMessage  = "service selection updated"
	AssignmentSavedSuccessMessage = "services saved for appointment"
	FlowClosedSuccessMessage      = "appointment flow closed"
	ReceiptsFetchedSuccessMessage = "receipts fetched"
)
