package stripe

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/pkg/config"
)

func TestNewClientValidatesKeyForEnv(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_live_abc", Env: "test"}, nil)
	require.Error(t, err)

	_, err = NewClient(context.Background(), config.StripeConfig{APIKey: "", Env: "test"}, nil)
	require.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_abc", Env: "staging"}, nil)
	require.ErrorIs(t, err, errInvalidStripeEnv)

	c, err := NewClient(context.Background(), config.StripeConfig{APIKey: "rk_test_abc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment())
}

func TestCheckoutParamsUsesLockedLinePrices(t *testing.T) {
	c := &Client{cfg: config.StripeConfig{
		Currency:   "USD",
		SuccessURL: "https://shop.test/orders?success=true",
		CancelURL:  "https://shop.test/orders?success=false",
	}}

	params, err := c.checkoutParams(CheckoutRequest{
		OrderID:   "order-1",
		OrderCode: "ORD-1001",
		Lines: []CheckoutLine{
			{Name: "CBL-1001 Harness", Quantity: 100, Price: decimal.RequireFromString("700")},
			{Name: "CBL-1002 Jumper", Quantity: 5, Price: decimal.RequireFromString("35.005")},
		},
	})
	require.NoError(t, err)
	require.Len(t, params.LineItems, 2)

	first := params.LineItems[0]
	assert.Equal(t, int64(70000), *first.PriceData.UnitAmount)
	assert.Equal(t, int64(1), *first.Quantity)
	assert.Equal(t, "usd", *first.PriceData.Currency)
	assert.Equal(t, int64(3501), *params.LineItems[1].PriceData.UnitAmount)
	assert.Equal(t, "order-1", *params.ClientReferenceID)
	assert.Equal(t, "ORD-1001", params.Metadata["order_code"])
}

func TestCheckoutParamsRejectsEmptyCart(t *testing.T) {
	c := &Client{}
	_, err := c.checkoutParams(CheckoutRequest{})
	require.ErrorIs(t, err, errNoLines)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2800), ToMinorUnits(decimal.RequireFromString("28")))
	assert.Equal(t, int64(1), ToMinorUnits(decimal.RequireFromString("0.005")))
}

func TestCheckoutParamsDescribesQuantity(t *testing.T) {
	c := &Client{}
	params, err := c.checkoutParams(CheckoutRequest{Lines: []CheckoutLine{
		{Name: "CBL-1001", Description: "Main harness", Quantity: 100, Price: decimal.RequireFromString("700")},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Main harness (quantity 100)", *params.LineItems[0].PriceData.ProductData.Description)
}
