package domain

// Role differentiates profile tokens from operator tokens.
type Role string

const (
	RoleProfile Role = "PROFILE"
	RoleAdmin   Role = "ADMIN"
)
