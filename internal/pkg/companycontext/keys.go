package companycontext

// Shared Locals keys used across controllers and middlewares
const (
	ContextKey = "COMPANY_CONTEXT"
)
