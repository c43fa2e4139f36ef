package constvars

// Upstream clinic API resources.
const (
	ResourceAppointment       = "appointments"
	ResourceServiceCatalog    = "services"
	ResourceAssignedServices  = "services"
	ResourceServiceAssignment = "service assignment"
	ResourceReceipt           = "receipts"
)

const (
	ClinicAPIErrorMessagePath  = "message"
	ClinicAPIErrorFallbackPath = "error"
)

const (
	RedisKeyCatalogCache         = "clinicdesk:catalog"
	RedisKeySubmissionLockFormat = "clinicdesk:lock:appointment:%d:assignment"
)

const (
	MongoCollectionReceipts = "service_assignment_receipts"
)
