package middlewares

const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxRole      = "auth.role"
	// CtxErrorDetails carries the underlying error text for the request log.
	CtxErrorDetails = "error_details"
)
