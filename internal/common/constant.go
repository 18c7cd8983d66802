package common

// AuthorizationHeaderName carries "Bearer <access token>" on API requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName is echoed on every response and attached to log lines.
const RequestIDHeaderName = "X-Request-ID"

// CSVExtension is the only file extension accepted for uploaded files.
const CSVExtension = ".csv"
