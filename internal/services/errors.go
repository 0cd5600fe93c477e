package services

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// status codes with errors.Is.
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrAddressNotFound      = errors.New("address not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrVendorNotFound       = errors.New("vendor not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotConversationOwner = errors.New("conversation does not belong to caller")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrGatewayFailure       = errors.New("payment gateway failure")
	ErrAttachmentTooLarge   = errors.New("attachment exceeds size limit")
	ErrUnsupportedMediaType = errors.New("attachment media type not allowed")
	ErrEmptyMessage         = errors.New("message body is empty")
)
