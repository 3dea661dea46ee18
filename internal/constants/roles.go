package constants

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader"
)
