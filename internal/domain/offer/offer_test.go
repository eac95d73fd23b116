package offer

import (
	"testing"

	"github.com/qbic/datamanager/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOffer(t *testing.T) {
	net := valueobject.NewMoneyEUR(decimal.RequireFromString("1000.00"))

	t.Run("computes total price", func(t *testing.T) {
		o, err := NewOffer("O-2024-0001", "Gut microbiome", "Study the gut", net, decimal.RequireFromString("0.19"))
		require.NoError(t, err)
		assert.Equal(t, "1190.00 EUR", o.TotalPrice().String())
	})

	t.Run("fails without code", func(t *testing.T) {
		_, err := NewOffer(" ", "Title", "", net, decimal.Zero)
		require.Error(t, err)
	})

	t.Run("fails with invalid VAT", func(t *testing.T) {
		_, err := NewOffer("O-1", "Title", "", net, decimal.RequireFromString("1.5"))
		require.Error(t, err)
	})

	t.Run("attaches document", func(t *testing.T) {
		o, err := NewOffer("O-1", "Title", "", net, decimal.Zero)
		require.NoError(t, err)
		o.AttachDocument("offers/O-1/offer.pdf")
		assert.Equal(t, "offers/O-1/offer.pdf", o.DocumentKey)
	})
}
