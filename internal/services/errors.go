package services

import "net/http"

// ServiceError is a domain failure with a stable machine-readable code. The
// code is part of the API contract; the message is for humans and may change.
type ServiceError struct {
	Code    string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

var (
	// Auth
	ErrInvalidCredentials = &ServiceError{Code: "INVALID_CREDENTIALS", Status: http.StatusUnauthorized, Message: "invalid email or password"}
	ErrEmailTaken         = &ServiceError{Code: "EMAIL_TAKEN", Status: http.StatusConflict, Message: "an account with this email already exists"}
	ErrRoleForbidden      = &ServiceError{Code: "FORBIDDEN", Status: http.StatusForbidden, Message: "insufficient role for this operation"}
	ErrRoleMismatch       = &ServiceError{Code: "ROLE_MISMATCH", Status: http.StatusForbidden, Message: "account role does not match the requested role"}

	// entities
	ErrUserNotFound  = &ServiceError{Code: "USER_NOT_FOUND", Status: http.StatusNotFound, Message: "user not found"}
	ErrClassNotFound = &ServiceError{Code: "CLASS_NOT_FOUND", Status: http.StatusNotFound, Message: "class not found"}
	ErrClassExists   = &ServiceError{Code: "CLASS_EXISTS", Status: http.StatusConflict, Message: "a class with this code already exists"}
	ErrNotEnrolled   = &ServiceError{Code: "NOT_ENROLLED", Status: http.StatusForbidden, Message: "user is not enrolled in this class"}
	ErrNotClassOwner = &ServiceError{Code: "NOT_CLASS_OWNER", Status: http.StatusForbidden, Message: "class belongs to another teacher"}

	// tokens
	ErrTokenInvalid       = &ServiceError{Code: "TOKEN_INVALID", Status: http.StatusBadRequest, Message: "session token is not recognized"}
	ErrTokenExpired       = &ServiceError{Code: "TOKEN_EXPIRED", Status: http.StatusBadRequest, Message: "session token has expired"}
	ErrTokenUsed          = &ServiceError{Code: "TOKEN_USED", Status: http.StatusBadRequest, Message: "session token has already been used"}
	ErrTokenClassMismatch = &ServiceError{Code: "TOKEN_CLASS_MISMATCH", Status: http.StatusBadRequest, Message: "session token was issued for a different class"}

	// devices
	ErrDeviceInfoMissing   = &ServiceError{Code: "DEVICE_INFO_MISSING", Status: http.StatusBadRequest, Message: "device attributes are missing or malformed"}
	ErrDeviceNotBound      = &ServiceError{Code: "DEVICE_NOT_BOUND", Status: http.StatusForbidden, Message: "no device is bound to this account"}
	ErrDeviceMismatch      = &ServiceError{Code: "DEVICE_MISMATCH", Status: http.StatusForbidden, Message: "request device does not match the bound device"}
	ErrDeviceAlreadyBound  = &ServiceError{Code: "DEVICE_ALREADY_BOUND", Status: http.StatusConflict, Message: "a device is already bound to this account"}
	ErrDeviceBindingAbsent = &ServiceError{Code: "DEVICE_BINDING_ABSENT", Status: http.StatusNotFound, Message: "no device binding exists for this user"}

	// geofence
	ErrLocationRequired   = &ServiceError{Code: "LOCATION_REQUIRED", Status: http.StatusBadRequest, Message: "location coordinates are required"}
	ErrInvalidCoordinates = &ServiceError{Code: "INVALID_COORDINATES", Status: http.StatusBadRequest, Message: "location coordinates are malformed"}
	ErrOutsideCampus      = &ServiceError{Code: "OUTSIDE_CAMPUS", Status: http.StatusForbidden, Message: "location is outside the campus boundary"}
)

// AsServiceError unwraps err into a *ServiceError if it is one.
func AsServiceError(err error) (*ServiceError, bool) {
	se, ok := err.(*ServiceError)
	return se, ok
}
