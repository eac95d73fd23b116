package project

import (
	"context"
	"testing"
	"time"

	"github.com/qbic/datamanager/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOfferService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := storage.NewInMemoryObjectStorage()
	svc := NewOfferService(f.offers, store, zap.NewNop())

	t.Run("search and get", func(t *testing.T) {
		previews, err := svc.Search(ctx, "Offered", 0, 0)
		require.NoError(t, err)
		require.Len(t, previews, 1)

		o, err := svc.Get(ctx, "O-2024-0001")
		require.NoError(t, err)
		assert.Equal(t, "1000.00", o.NetPrice)
		assert.Equal(t, "1190.00", o.TotalPrice)
		assert.Equal(t, "EUR", o.Currency)
		assert.False(t, o.HasDocument)

		_, err = svc.Get(ctx, "O-2000-0000")
		assert.ErrorIs(t, err, ErrUnknownOffer)
	})

	t.Run("document upload replaces the previous one", func(t *testing.T) {
		_, err := svc.DocumentURL(ctx, "O-2024-0001", time.Minute)
		assert.ErrorIs(t, err, ErrOfferDocumentMissing)

		require.NoError(t, svc.UploadDocument(ctx, "O-2024-0001", "offer-v1.pdf", "application/pdf", []byte("v1")))
		require.NoError(t, svc.UploadDocument(ctx, "O-2024-0001", "../offer-v2.pdf", "application/pdf", []byte("v2")))

		exists, _ := store.ObjectExists(ctx, "offers/O-2024-0001/offer-v1.pdf")
		assert.False(t, exists)
		data, err := store.Download(ctx, "offers/O-2024-0001/offer-v2.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), data)

		url, err := svc.DocumentURL(ctx, "O-2024-0001", time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, url)
	})
}
