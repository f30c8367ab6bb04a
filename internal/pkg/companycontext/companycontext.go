package companycontext

import "github.com/gofiber/fiber/v2"

// CompanyContext represents the authenticated tenant for a request
type CompanyContext struct {
	CompanyID       uint   `json:"company_id"`
	CompanyUUID     string `json:"company_uuid"`
	Name            string `json:"name"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// GetCompanyContext retrieves the company context from fiber context.
// Returns an unauthenticated context if none is set.
func GetCompanyContext(c *fiber.Ctx) CompanyContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(CompanyContext)
	}
	return CompanyContext{IsAuthenticated: false}
}

// SetCompanyContext stores the company context on the fiber context.
func SetCompanyContext(c *fiber.Ctx, ctx CompanyContext) {
	c.Locals(ContextKey, ctx)
}

// GetCompanyID returns the current tenant's ID, or 0 if unauthenticated
func GetCompanyID(c *fiber.Ctx) uint {
	return GetCompanyContext(c).CompanyID
}
