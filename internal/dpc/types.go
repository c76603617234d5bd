// Package dpc builds the OpenID4VP-style presentation request handed to
// the credential broker and interprets the merchant's final validation
// response.
package dpc

// Request wraps one presentation request under its protocol identifier.
type DpcRequest struct {
	Protocol string  `json:"protocol"`
	Request  Request `json:"request"`
}

type Request struct {
	ResponseType    string          `json:"response_type"`
	ResponseMode    string          `json:"response_mode"`
	Nonce           string          `json:"nonce"`
	DcqlQuery       DcqlQuery       `json:"dcql_query"`
	TransactionData []string        `json:"transaction_data"`
	ClientMetadata  *ClientMetadata `json:"client_metadata,omitempty"`
}

// DcqlQuery describes exactly which credential claims are requested.
type DcqlQuery struct {
	Credentials []CredentialQuery `json:"credentials"`
}

type CredentialQuery struct {
	ID     string  `json:"id"`
	Format string  `json:"format"`
	Meta   Meta    `json:"meta"`
	Claims []Claim `json:"claims"`
}

type Meta struct {
	DoctypeValue string `json:"doctype_value"`
}

type Claim struct {
	Path []string `json:"path"`
}

type ClientMetadata struct {
	VpFormatsSupported VpFormatsSupported `json:"vp_formats_supported"`
}

type VpFormatsSupported struct {
	MsoMdoc MdocFormatsSupported `json:"mso_mdoc"`
}

type MdocFormatsSupported struct {
	IssuerAuthAlgValues []int `json:"issuerauth_alg_values"`
	DeviceAuthAlgValues []int `json:"deviceauth_alg_values"`
}

// TransactionData binds a presentation request to one specific purchase.
// It travels base64url-encoded (no padding) inside the request.
type TransactionData struct {
	Type                     string   `json:"type"`
	CredentialIDs            []string `json:"credential_ids"`
	TransactionDataHashesAlg []string `json:"transaction_data_hashes_alg"`
	MerchantName             string   `json:"merchant_name"`
	Amount                   string   `json:"amount"`
	AdditionalInfo           string   `json:"additional_info"`
}

// AdditionalInfo is the confirmation sheet shown by the wallet: a title,
// a purchase table and a footer summarizing the total. Serialized to a
// JSON string before embedding in TransactionData.
type AdditionalInfo struct {
	Title       string     `json:"title"`
	TableHeader []string   `json:"tableHeader"`
	TableRows   [][]string `json:"tableRows"`
	Footer      string     `json:"footer"`
}
