package apperr

type Kind string

type AppError struct {
	Kind      Kind
	Code      string            // machine-readable code for clients and log correlation
	PublicMsg string            // safe to show to the end user
	Fields    map[string]string // form/validation field errors (optional)
	Err       error             // internal error (log only)
}
