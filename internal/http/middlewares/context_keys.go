package middlewares

const (
	CtxRequestID = "request_id"
	CtxAdminRole = "admin.role"
)
