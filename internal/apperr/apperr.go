package apperr

import "fmt"

// Error is the typed error every domain service raises. The HTTP layer maps
// Code/Status onto the wire envelope; Details travel as-is in the response.
type Error struct {
	Code    string
	Status  int
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Validation(message string, details map[string]any) *Error {
	return &Error{Code: "VALIDATION_ERROR", Status: 422, Message: message, Details: details}
}

func NotFound(message string, details map[string]any) *Error {
	return &Error{Code: "RESOURCE_NOT_FOUND", Status: 404, Message: message, Details: details}
}

func BusinessRule(message string, details map[string]any) *Error {
	return &Error{Code: "BUSINESS_RULE_VIOLATION", Status: 409, Message: message, Details: details}
}

func System(message string) *Error {
	return &Error{Code: "SYSTEM_ERROR", Status: 500, Message: message}
}

func Database(message string) *Error {
	return &Error{Code: "DATABASE_ERROR", Status: 500, Message: message}
}

func Integrity(message string) *Error {
	return &Error{Code: "INTEGRITY_ERROR", Status: 409, Message: message}
}

func RestaurantNotFound(restaurantID string) *Error {
	return &Error{
		Code:    "RESTAURANT_NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("Restaurant not found: %s", restaurantID),
		Details: map[string]any{"restaurant_id": restaurantID},
	}
}

func InvalidEventType(eventType string) *Error {
	return &Error{
		Code:    "EVENT_INVALID_TYPE",
		Status:  422,
		Message: fmt.Sprintf("Invalid event type: %s", eventType),
		Details: map[string]any{"event_type": eventType},
	}
}

func DuplicateEvent(eventID string) *Error {
	return &Error{
		Code:    "EVENT_DUPLICATE",
		Status:  409,
		Message: fmt.Sprintf("Event already processed: %s", eventID),
		Details: map[string]any{"event_id": eventID, "idempotent": true},
	}
}

func InsufficientBalance(restaurantID string, available, required int64) *Error {
	return &Error{
		Code:    "PAYOUT_INSUFFICIENT_BALANCE",
		Status:  409,
		Message: "Insufficient balance for payout",
		Details: map[string]any{
			"restaurant_id":   restaurantID,
			"available_cents": available,
			"required_cents":  required,
		},
	}
}

func PendingPayout(restaurantID string) *Error {
	return &Error{
		Code:    "PAYOUT_ALREADY_PENDING",
		Status:  409,
		Message: "Cannot create payout while another is pending",
		Details: map[string]any{"restaurant_id": restaurantID},
	}
}
