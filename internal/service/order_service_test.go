package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/errs"
)

func newOrderFixture(t *testing.T, status string) (*OrderService, *fakeProductRepo, *fakeOrderRepo, *order.Order) {
	t.Helper()
	pr := newFakeProductRepo(
		&product.Product{ID: "p1", Name: "A", PriceCents: 1000, Stock: 3},
		&product.Product{ID: "p2", Name: "B", PriceCents: 500, Stock: 7},
	)
	or := newFakeOrderRepo()
	o := &order.Order{
		ID:     "o1",
		UserID: "u1",
		Status: status,
		Lines: []order.Line{
			{OrderID: "o1", ProductID: "p1", NameSnapshot: "A", PriceCentsSnapshot: 1000, Quantity: 2},
			{OrderID: "o1", ProductID: "p2", NameSnapshot: "B", PriceCentsSnapshot: 500, Quantity: 1},
		},
		TotalCents: 2500,
	}
	require.NoError(t, or.Create(context.Background(), o))
	return NewOrderService(or, pr, nil), pr, or, o
}

func TestUpdateStatusTransitionGraph(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{order.StatusPlaced, order.StatusShipped, true},
		{order.StatusPlaced, order.StatusCancelled, true},
		{order.StatusShipped, order.StatusDelivered, true},
		{order.StatusPlaced, order.StatusDelivered, false},
		{order.StatusShipped, order.StatusPlaced, false},
		{order.StatusShipped, order.StatusCancelled, false},
		{order.StatusDelivered, order.StatusShipped, false},
		{order.StatusDelivered, order.StatusCancelled, false},
		{order.StatusCancelled, order.StatusPlaced, false},
		{order.StatusCancelled, order.StatusShipped, false},
	}

	for _, tc := range cases {
		t.Run(tc.from+"_to_"+tc.to, func(t *testing.T) {
			svc, _, or, _ := newOrderFixture(t, tc.from)
			updated, err := svc.UpdateStatus(context.Background(), "o1", tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)
			} else {
				require.ErrorIs(t, err, errs.ErrInvalidTransition)
				stored, gerr := or.GetByID(context.Background(), "o1")
				require.NoError(t, gerr)
				assert.Equal(t, tc.from, stored.Status, "failed transition must not change the order")
			}
		})
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t, order.StatusPlaced)
	_, err := svc.UpdateStatus(context.Background(), "missing", order.StatusShipped)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCancellationRestoresStockExactlyOnce(t *testing.T) {
	svc, pr, _, _ := newOrderFixture(t, order.StatusPlaced)

	updated, err := svc.UpdateStatus(context.Background(), "o1", order.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, updated.Status)

	// restock by exactly the cancelled line quantities
	assert.Equal(t, int64(5), pr.stock("p1"))
	assert.Equal(t, int64(8), pr.stock("p2"))

	// a second cancellation is rejected and must not double-restock
	_, err = svc.UpdateStatus(context.Background(), "o1", order.StatusCancelled)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.Equal(t, int64(5), pr.stock("p1"))
	assert.Equal(t, int64(8), pr.stock("p2"))
}

func TestShipmentDoesNotTouchStock(t *testing.T) {
	svc, pr, _, _ := newOrderFixture(t, order.StatusPlaced)

	_, err := svc.UpdateStatus(context.Background(), "o1", order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pr.stock("p1"))
	assert.Equal(t, int64(7), pr.stock("p2"))
}

func TestGetForUserOwnershipCheck(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t, order.StatusPlaced)

	o, err := svc.GetForUser(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = svc.GetForUser(context.Background(), "someone-else", "o1")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestListForUserNewestFirst(t *testing.T) {
	pr := newFakeProductRepo()
	or := newFakeOrderRepo()
	svc := NewOrderService(or, pr, nil)

	for _, id := range []string{"o1", "o2", "o3"} {
		require.NoError(t, or.Create(context.Background(), &order.Order{
			ID: id, UserID: "u1", Status: order.StatusPlaced,
		}))
	}

	list, err := svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "o3", list[0].ID)
	assert.Equal(t, "o1", list[2].ID)
}
