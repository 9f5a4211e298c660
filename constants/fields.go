package constants

// record keys derived from the raw schema fields
const (
	FieldTimestamp = "timestamp"
	FieldRequest   = "request"

	FieldRequestMethod      = "request.method"
	FieldRequestURI         = "request.uri"
	FieldRequestHTTPVersion = "request.http_version"
	FieldURIScheme          = "request.uri.scheme"
	FieldURIUser            = "request.uri.user"
	FieldURIHost            = "request.uri.host"
	FieldURIPort            = "request.uri.port"
	FieldURIPath            = "request.uri.path"
	FieldURIQuery           = "request.uri.query"
	FieldURIFragment        = "request.uri.fragment"

	PortSuffix = "_port"
)
