package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-commerce/shopping-assistant/internal/bus"
	"github.com/agentic-commerce/shopping-assistant/internal/dpc"
	"github.com/agentic-commerce/shopping-assistant/internal/planner"
)

func stringParam(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func objectSchema(required []string, props map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// registerTools installs the closed tool table. Tool names form the
// planner's entire action space; anything else is rejected as an
// unknown tool.
func (e *Engine) registerTools() {
	e.registry = map[string]tool{}

	e.register(planner.ToolSpec{
		Name:        "find_products",
		Description: "Finds products based on a user's description.",
		Parameters: objectSchema([]string{"description"}, map[string]interface{}{
			"description": stringParam("The user's product search query."),
		}),
	}, e.runFindProducts)

	e.register(planner.ToolSpec{
		Name:        "select_product",
		Description: "Selects a product from the list of options.",
		Parameters: objectSchema([]string{"itemName"}, map[string]interface{}{
			"itemName": stringParam("The item name of the product to select."),
		}),
	}, e.runSelectProduct)

	e.register(planner.ToolSpec{
		Name:        "get_shipping_address",
		Description: "Gets the shipping address from a credential provider.",
		Parameters: objectSchema([]string{"email"}, map[string]interface{}{
			"email": stringParam("The user's email address."),
		}),
	}, e.runGetShippingAddress)

	e.register(planner.ToolSpec{
		Name:        "update_cart",
		Description: "Updates the cart with the user's shipping address.",
		Parameters:  objectSchema(nil, map[string]interface{}{}),
	}, e.runUpdateCart)

	e.register(planner.ToolSpec{
		Name:        "retrieve_dpc_options",
		Description: "Handles the entire payment flow, from getting options to final validation.",
		Parameters:  objectSchema(nil, map[string]interface{}{}),
	}, e.runRetrieveDPCOptions)

	e.register(planner.ToolSpec{
		Name:        "initiate_payment_with_otp",
		Description: "Retries payment with an OTP.",
		Parameters: objectSchema([]string{"otp"}, map[string]interface{}{
			"otp": stringParam("The one-time password from the user."),
		}),
	}, e.runInitiatePaymentWithOTP)
}

func (e *Engine) register(spec planner.ToolSpec, run ToolFunc) {
	e.registry[spec.Name] = tool{spec: spec, run: run}
	e.specs = append(e.specs, spec)
}

func (e *Engine) runFindProducts(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	description := argString(args, "description")
	options, err := e.tools.FindProducts(ctx, e.state, description)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return map[string]interface{}{
			"status":        "error",
			"response_text": "Sorry, I couldn't find any products matching that description.",
		}, nil
	}

	var listing strings.Builder
	for _, cart := range options {
		total := cart.Contents.PaymentRequest.Details.Total
		fmt.Fprintf(&listing, "- %s for %.2f %s\n", cart.Label(), total.Amount.Value, total.Amount.Currency)
	}
	return map[string]interface{}{
		"status":        "success",
		"response_text": fmt.Sprintf("I found a few options for you:\n%s", listing.String()),
	}, nil
}

func (e *Engine) runSelectProduct(_ context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	itemName := argString(args, "itemName")
	cart, err := e.tools.SelectProduct(e.state, itemName)
	if err != nil {
		return map[string]interface{}{
			"status":        "error",
			"response_text": fmt.Sprintf("Could not find item %s", itemName),
		}, nil
	}
	return map[string]interface{}{
		"status":        "success",
		"response_text": fmt.Sprintf("Selected %s", cart.Label()),
	}, nil
}

func (e *Engine) runGetShippingAddress(_ context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	address := e.tools.GetShippingAddress(e.state, argString(args, "email"))
	return map[string]interface{}{
		"status":        "success",
		"streetAddress": address.StreetAddress,
		"city":          address.City,
		"state":         address.State,
		"zipCode":       address.ZipCode,
	}, nil
}

func (e *Engine) runUpdateCart(ctx context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	if _, err := e.tools.UpdateCart(ctx, e.state); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "success"}, nil
}

func (e *Engine) runRetrieveDPCOptions(ctx context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	result, err := e.tools.RetrieveDPCOptions(ctx, e.state)
	if err != nil {
		return nil, err
	}
	return e.paymentResultMap(result), nil
}

func (e *Engine) runInitiatePaymentWithOTP(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	result, err := e.tools.InitiatePaymentWithOTP(ctx, e.state, argString(args, "otp"))
	if err != nil {
		return nil, err
	}
	return e.paymentResultMap(result), nil
}

func (e *Engine) paymentResultMap(result dpc.PaymentResult) map[string]interface{} {
	switch result.Status {
	case dpc.StatusSuccess:
		if e.eventBus != nil {
			e.eventBus.PublishAsync(bus.EventPaymentCompleted, map[string]interface{}{
				"message": result.Message,
			})
		}
		return map[string]interface{}{"status": "success", "message": result.Message}
	case dpc.StatusOtpRequired:
		return map[string]interface{}{"status": "otp_required", "message": result.Message}
	default:
		return map[string]interface{}{"status": "error", "message": result.Message}
	}
}
