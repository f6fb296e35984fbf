package constants

const (
	TOKEN_COOKIE = "token"

	ERROR_INTERNAL_ERROR  = "Server error"
	ERROR_INPUT           = "Invalid input"
	ROUTE_NOT_FOUND       = "Route not found"
	MISSING_LOGIN_INPUT   = "Please provide email and password"
	MISSING_REGISTER      = "Email and password are required"
	INVALID_CREDENTIALS   = "Invalid credentials"
	EMAIL_IN_USE          = "Email already in use"
	REGISTER_SUCCESS      = "User registered successfully"
	NOT_AUTHORIZED        = "Not authorized, no token"
	TOKEN_INVALID         = "Not authorized, token failed"
	LOGOUT_SUCCESS        = "Logged out successfully"
	MISSING_EMAIL         = "Please provide your email"
	RESET_LINK_SENT       = "If a user with that email exists, a password reset link will be sent"
	MISSING_RESET_INPUT   = "Please provide token and new password"
	INVALID_RESET_TOKEN   = "Invalid or expired token"
	PASSWORD_RESET_DONE   = "Password has been reset successfully"
	PASSWORD_RESET_SUBJ   = "Password Reset Request"
	INVALID_ZONE          = "Invalid zone"
	CUSTOMER_NAME_MISSING = "Customer name is required"
	TICKET_ID_MISSING     = "Ticket ID is required"
	TICKET_ID_INVALID     = "Invalid ticket ID"
	TICKET_NEVER_SOLD     = "Ticket was never sold"
	TICKET_ALREADY_USED   = "Ticket already used"
	TICKET_VALIDATED      = "Ticket validated successfully"
	INVALID_QUANTITY      = "Ticket quantity must be a positive number"
	BULK_IN_PROGRESS      = "Bulk generation is already running"
	BULK_FAILED           = "Failed to generate tickets"
	EXPORT_FAILED         = "Failed to download Excel file"
	INVENTORY_BUSY        = "Ticket inventory is busy, please retry"
	PROVISION_SUCCESS     = "Tickets provisioned"
)
