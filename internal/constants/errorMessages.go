package constants

const (
	MsgInvalidID        = "Invalid id"
	MsgNotFound         = "Not found"
	MsgInvalidPage      = "Invalid page"
	MsgInvalidFilter    = "Invalid filter value"
	MsgInvalidNearby    = "lat and lon are required; radius_km must be in (0, 500]"
	MsgImportFailed     = "Import failed"
	MsgImportCompleted  = "Import completed"
	MsgUnauthorized     = "Unauthorized"
	MsgForbidden        = "Forbidden: admin role required"
	MsgTooManyRequests  = "Too many requests"
	MsgImportNotEnabled = "Import endpoint is disabled: ADMIN_JWT_SECRET not set"
)
