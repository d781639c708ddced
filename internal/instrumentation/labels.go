package instrumentation

// Metric and span label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	// Where the OAuth token of a tool call came from.
	CredentialSourceUser   = "user"
	CredentialSourceServer = "server"

	// Outcome of resolving the token of a tool call.
	CredentialResultOK       = "ok"
	CredentialResultMissing  = "missing"
	CredentialResultInvalid  = "invalid"
	CredentialResultExpired  = "expired"
	CredentialResultDisabled = "disabled"

	ServiceGmail = "gmail"

	// Gmail API operations.
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationModify = "modify"
	OperationDelete = "delete"
	OperationSend   = "send"
	OperationSearch = "search"
)

// statusOf maps an error to StatusSuccess or StatusError.
func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
