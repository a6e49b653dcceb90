package shared

import "errors"

var (
	// ErrNotFound indicates a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure without revealing which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, invalid or expired bearer token.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates an admin-only route hit by a non-admin.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrProductUnavailable indicates a missing or inactive product at checkout.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock indicates the requested quantity exceeds current stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidOrExpiredToken indicates an unusable password reset token.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrOrderNumberExhausted indicates the order number draw hit its retry cap.
	ErrOrderNumberExhausted = errors.New("order number generation exhausted")
	// ErrUpstreamService indicates an image host or mail dispatch failure.
	ErrUpstreamService = errors.New("upstream service failure")
	// ErrCategoryInUse indicates active products still reference the category.
	ErrCategoryInUse = errors.New("category has active products")
	// ErrDuplicateCategory indicates a category with the same name already exists.
	ErrDuplicateCategory = errors.New("category name already exists")
	// ErrValidation indicates request input that failed a semantic check.
	ErrValidation = errors.New("validation failed")
)
