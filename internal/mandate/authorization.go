package mandate

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AuthorizationClaims decodes the merchant_authorization JWT attached to
// a cart mandate and returns its claim set for display and logging. The
// token is not verified here; signature checking belongs to the payment
// processor, this client only surfaces what the merchant asserted.
// Returns false when the cart carries no authorization.
func AuthorizationClaims(cart CartMandate) (map[string]interface{}, bool, error) {
	if cart.MerchantAuthorization == "" {
		return nil, false, nil
	}

	token, err := jwt.Parse([]byte(cart.MerchantAuthorization),
		jwt.WithVerify(false),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, true, fmt.Errorf("failed to decode merchant authorization: %w", err)
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, true, fmt.Errorf("failed to read merchant authorization claims: %w", err)
	}
	return claims, true, nil
}
