package middleware

const (
	pkg = "middleware/"

	AdminTokenHeader = "X-Admin-Token"
)
