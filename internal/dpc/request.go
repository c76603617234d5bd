package dpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/agentic-commerce/shopping-assistant/internal/mandate"
)

const (
	protocolIdentifier = "openid4vp-v1-unsigned"
	credentialID       = "cred1"
	mdocFormat         = "mso_mdoc"
	paymentCardDoctype = "com.emvco.payment_card"
	hashAlgorithm      = "sha-256"

	// ES256 in COSE algorithm registry terms.
	coseAlgES256 = -7
)

// BuildRequest constructs the presentation request for one cart mandate
// and returns it serialized, exactly the payload handed to the
// credential broker. A fresh nonce is generated on every call.
func BuildRequest(cart mandate.CartMandate, merchantName string) (string, error) {
	details := cart.Contents.PaymentRequest.Details
	totalValue := details.Total.Amount.Value
	totalString := fmt.Sprintf("%.2f", totalValue)

	nonce := uuid.New().String()

	rows := make([][]string, 0, len(details.DisplayItems))
	for _, item := range details.DisplayItems {
		value := strconv.FormatFloat(item.Amount.Value, 'f', -1, 64)
		rows = append(rows, []string{item.Label, "1", value, value})
	}

	additionalInfo := AdditionalInfo{
		Title:       "Please confirm your purchase details...",
		TableHeader: []string{"Name", "Qty", "Price", "Total"},
		TableRows:   rows,
		Footer:      fmt.Sprintf("Your total is %s", totalString),
	}
	additionalInfoJSON, err := json.Marshal(additionalInfo)
	if err != nil {
		return "", fmt.Errorf("failed to serialize confirmation details: %w", err)
	}

	txData := TransactionData{
		Type:                     "payment_card",
		CredentialIDs:            []string{credentialID},
		TransactionDataHashesAlg: []string{hashAlgorithm},
		MerchantName:             merchantName,
		Amount:                   fmt.Sprintf("US %s", totalString),
		AdditionalInfo:           string(additionalInfoJSON),
	}
	txJSON, err := json.Marshal(txData)
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction data: %w", err)
	}
	encodedTx := base64.RawURLEncoding.EncodeToString(txJSON)

	query := DcqlQuery{
		Credentials: []CredentialQuery{
			{
				ID:     credentialID,
				Format: mdocFormat,
				Meta:   Meta{DoctypeValue: paymentCardDoctype},
				Claims: []Claim{
					{Path: []string{paymentCardDoctype + ".1", "card_number"}},
					{Path: []string{paymentCardDoctype + ".1", "holder_name"}},
				},
			},
		},
	}

	request := DpcRequest{
		Protocol: protocolIdentifier,
		Request: Request{
			ResponseType:    "vp_token",
			ResponseMode:    "dc_api",
			Nonce:           nonce,
			DcqlQuery:       query,
			TransactionData: []string{encodedTx},
			ClientMetadata: &ClientMetadata{
				VpFormatsSupported: VpFormatsSupported{
					MsoMdoc: MdocFormatsSupported{
						IssuerAuthAlgValues: []int{coseAlgES256},
						DeviceAuthAlgValues: []int{coseAlgES256},
					},
				},
			},
		},
	}

	out, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to serialize presentation request: %w", err)
	}
	return string(out), nil
}
