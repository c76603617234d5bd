// Package merchant is a mock merchant agent: it serves an agent card
// and answers A2A message/send calls with cart mandates and payment
// verdicts. Used by local demos and tests in place of a real AP2
// merchant.
package merchant

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/a2a"
	"github.com/agentic-commerce/shopping-assistant/internal/mandate"
)

// Product is one catalog entry.
type Product struct {
	Name  string
	Price float64
}

// Agent holds the mock merchant's catalog and the carts it issued.
type Agent struct {
	Name    string
	Catalog []Product

	// RequireOTP makes payment validation demand a one-time password on
	// the first attempt.
	RequireOTP bool

	mu     sync.RWMutex
	carts  map[string]mandate.CartMandate
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Agent {
	if logger == nil {
		logger = logrus.New()
	}
	return &Agent{
		Name: "Mock Merchant",
		Catalog: []Product{
			{Name: "RunFast Shoes", Price: 89.99},
			{Name: "TrailBlazer Sneakers", Price: 129.50},
			{Name: "CityWalk Loafers", Price: 64.00},
		},
		carts:  make(map[string]mandate.CartMandate),
		logger: logger,
	}
}

// Router builds the gin engine serving the agent card and the JSON-RPC
// endpoint.
func (a *Agent) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/.well-known/agent-card.json", a.handleAgentCard)
	r.POST("/", a.handleMessageSend)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func (a *Agent) handleAgentCard(c *gin.Context) {
	card := a2a.AgentCard{
		Name:        a.Name,
		Description: "Sells products and settles payments over the AP2 extension.",
		URL:         "http://" + c.Request.Host,
		Skills: []a2a.AgentSkill{
			{ID: "product_search", Name: "Product Search", Description: "Finds products matching an IntentMandate."},
			{ID: "cart_update", Name: "Cart Update", Description: "Attaches shipping and repricings to a cart."},
			{ID: "payment_validation", Name: "Payment Validation", Description: "Validates digital payment credentials."},
		},
	}
	c.JSON(http.StatusOK, card)
}

type rpcRequest struct {
	ID      string `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  struct {
		Message a2a.Message `json:"message"`
	} `json:"params"`
}

func (a *Agent) handleMessageSend(c *gin.Context) {
	var req rpcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := req.Params.Message
	a.logger.Debugf("message/send %s (context %s)", msg.MessageID, msg.ContextID)

	artifacts := a.interpret(msg)

	c.JSON(http.StatusOK, gin.H{
		"id":      req.ID,
		"jsonrpc": "2.0",
		"result":  gin.H{"artifacts": artifacts},
	})
}

// interpret inspects the message's data parts and produces the matching
// artifacts: a product search, a cart update or a payment validation.
func (a *Agent) interpret(msg a2a.Message) []gin.H {
	parts := dataParts(msg)

	if _, ok := parts[mandate.IntentMandateKey]; ok {
		return a.searchArtifacts()
	}
	if cartID, ok := parts["cart_id"].(string); ok {
		return a.updateArtifacts(cartID, parts["shipping_address"])
	}
	if _, ok := parts["dpc_response"]; ok {
		_, hasOTP := parts["otp"]
		return a.paymentArtifacts(hasOTP)
	}

	return []gin.H{}
}

func dataParts(msg a2a.Message) map[string]interface{} {
	merged := map[string]interface{}{}
	for _, p := range msg.Parts {
		if dp, ok := p.(a2a.DataPart); ok {
			for k, v := range dp.Data {
				merged[k] = v
			}
		}
	}
	return merged
}

func (a *Agent) searchArtifacts() []gin.H {
	a.mu.Lock()
	defer a.mu.Unlock()

	artifacts := make([]gin.H, 0, len(a.Catalog))
	for _, product := range a.Catalog {
		cart := a.buildCart(product)
		a.carts[cart.Contents.ID] = cart
		artifacts = append(artifacts, cartArtifact(cart))
	}
	return artifacts
}

func (a *Agent) updateArtifacts(cartID string, shipping interface{}) []gin.H {
	a.mu.Lock()
	defer a.mu.Unlock()

	cart, ok := a.carts[cartID]
	if !ok {
		return []gin.H{}
	}

	item := cart.Contents.PaymentRequest.Details.DisplayItems[0]
	tax := round2(item.Amount.Value * 0.0875)
	shippingCost := 5.00
	total := round2(item.Amount.Value + tax + shippingCost)

	updated := cart
	updated.Contents.PaymentRequest.Details.DisplayItems = []mandate.DisplayItem{
		item,
		{Label: "Sales Tax", Amount: mandate.Amount{Currency: "USD", Value: tax}},
		{Label: "Shipping", Amount: mandate.Amount{Currency: "USD", Value: shippingCost}},
	}
	updated.Contents.PaymentRequest.Details.Total = mandate.DisplayItem{
		Label:  "Total",
		Amount: mandate.Amount{Currency: "USD", Value: total},
	}
	if addr, ok := shipping.(map[string]interface{}); ok {
		updated.Contents.PaymentRequest.ShippingAddress = &mandate.ShippingAddress{
			City:        stringOf(addr["city"]),
			Region:      stringOf(addr["state"]),
			PostalCode:  stringOf(addr["zipCode"]),
			AddressLine: []string{stringOf(addr["streetAddress"])},
			Country:     "US",
		}
	}
	a.carts[cartID] = updated

	return []gin.H{cartArtifact(updated)}
}

func (a *Agent) paymentArtifacts(hasOTP bool) []gin.H {
	status := "SUCCESS"
	if a.RequireOTP && !hasOTP {
		status = "OTP_REQUIRED"
	}
	return []gin.H{
		{
			"artifactId": uuid.New().String(),
			"parts": []gin.H{
				{"kind": "data", "data": gin.H{"payment_status": status}},
			},
		},
	}
}

func (a *Agent) buildCart(product Product) mandate.CartMandate {
	return mandate.CartMandate{
		Contents: mandate.CartContents{
			ID:                           uuid.New().String(),
			UserCartConfirmationRequired: true,
			CartExpiry:                   time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
			MerchantName:                 a.Name,
			PaymentRequest: mandate.PaymentRequest{
				MethodData: []mandate.PaymentMethodData{
					{
						SupportedMethods: "basic-card",
						Data: &mandate.PaymentMethodInfo{
							Network: []string{"visa", "mastercard"},
						},
					},
				},
				Details: mandate.PaymentDetails{
					ID: uuid.New().String(),
					DisplayItems: []mandate.DisplayItem{
						{Label: product.Name, Amount: mandate.Amount{Currency: "USD", Value: product.Price}},
					},
					Total: mandate.DisplayItem{
						Label:  "Total",
						Amount: mandate.Amount{Currency: "USD", Value: product.Price},
					},
				},
				Options: mandate.PaymentOptions{
					RequestShipping: true,
				},
			},
		},
	}
}

func cartArtifact(cart mandate.CartMandate) gin.H {
	return gin.H{
		"artifactId": uuid.New().String(),
		"parts": []gin.H{
			{"kind": "data", "data": gin.H{mandate.CartMandateKey: cart}},
		},
	}
}

func stringOf(v interface{}) string {
	s, _ := v.(string)
	return s
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
