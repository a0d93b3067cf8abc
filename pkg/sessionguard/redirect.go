package sessionguard

// Reason tells why a redirect was issued.
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonError     Reason = "error"
	ReasonSignedOut Reason = "signed_out"
)

// Redirect is the command to move the client to a public entry point.
// Consumers read it from Guard.Redirects and perform the navigation.
type Redirect struct {
	To     string
	Reason Reason
}
