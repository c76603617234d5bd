package a2a

import "fmt"

// DiscoveryError reports that a remote agent's card could not be fetched
// or did not match the expected shape. Fatal to session initialization;
// the session becomes usable once a valid URL is configured.
type DiscoveryError struct {
	URL string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("agent discovery failed for %s: %v", e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// TransportError reports a network-level failure while exchanging one
// JSON-RPC request. Never retried automatically.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError reports that a wire payload did not match the expected
// shape: a required field was absent, a discriminator value was
// unrecognized, or the bytes were not valid JSON at all.
type SchemaError struct {
	What    string // which structure was being decoded
	Missing string // required field that was absent, if any
	Value   string // unrecognized discriminator value, if any
	Err     error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Missing != "":
		return fmt.Sprintf("schema error in %s: missing required field %q", e.What, e.Missing)
	case e.Value != "":
		return fmt.Sprintf("schema error in %s: unrecognized kind %q", e.What, e.Value)
	case e.Err != nil:
		return fmt.Sprintf("schema error in %s: %v", e.What, e.Err)
	default:
		return fmt.Sprintf("schema error in %s", e.What)
	}
}

func (e *SchemaError) Unwrap() error { return e.Err }
