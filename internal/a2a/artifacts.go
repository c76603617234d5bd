package a2a

import "encoding/json"

// RPCResponse is the JSON-RPC envelope returned by message/send.
type RPCResponse struct {
	ID      string          `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the standard JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ArtifactResult is the result payload of a message/send call: the
// remote agent's response units.
type ArtifactResult struct {
	Artifacts []Artifact `json:"artifacts"`
}

// Artifact is one response unit containing typed parts.
type Artifact struct {
	ArtifactID string         `json:"artifactId"`
	Parts      []ArtifactPart `json:"parts"`
}

// ArtifactPart carries a payload and its kind tag. Data stays raw so
// callers decide the concrete shape to decode into.
type ArtifactPart struct {
	Data json.RawMessage `json:"data"`
	Kind string          `json:"kind"`
}

// DecodeArtifacts extracts the artifact list from a raw RPC response.
func DecodeArtifacts(resp *RPCResponse) (*ArtifactResult, error) {
	if resp == nil || len(resp.Result) == 0 {
		return nil, &SchemaError{What: "rpc response", Missing: "result"}
	}
	var result ArtifactResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, &SchemaError{What: "rpc response", Err: err}
	}
	return &result, nil
}

// FirstDataPart returns the first part tagged kind=="data", if any.
func (a Artifact) FirstDataPart() (ArtifactPart, bool) {
	for _, p := range a.Parts {
		if p.Kind == PartKindData {
			return p, true
		}
	}
	return ArtifactPart{}, false
}

// DecodeInto unmarshals the part payload into v.
func (p ArtifactPart) DecodeInto(v interface{}) error {
	if err := json.Unmarshal(p.Data, v); err != nil {
		return &SchemaError{What: "artifact part", Err: err}
	}
	return nil
}

// RawField returns the raw JSON of a top-level field in the part payload,
// quoting included, without decoding the rest of the object.
func (p ArtifactPart) RawField(name string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(p.Data, &obj); err != nil {
		return nil, false
	}
	raw, ok := obj[name]
	return raw, ok
}
