package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

type emitted struct {
	Audience notification.Audience
	Kind     notification.Kind
	Payload  any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) Emit(audience notification.Audience, kind notification.Kind, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{audience, kind, payload})
}

func (e *recordingEmitter) to(audience notification.Audience) []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []emitted
	for _, ev := range e.events {
		if ev.Audience == audience {
			out = append(out, ev)
		}
	}
	return out
}

func (e *recordingEmitter) kinds(audience notification.Audience) []notification.Kind {
	var out []notification.Kind
	for _, ev := range e.to(audience) {
		out = append(out, ev.Kind)
	}
	return out
}

type testEnv struct {
	handler  *Handler
	ledger   product.Ledger
	carts    *cart.Service
	orders   *order.Service
	journal  *mocks.MockEventStore
	notifier *recordingEmitter
}

func newTestHandler(ledger product.Ledger, cartRepo cart.Repository) *testEnv {
	env := &testEnv{
		ledger:   ledger,
		carts:    cart.NewService(cartRepo, nil, ledger),
		orders:   order.NewService(order.NewMemoryRepository()),
		journal:  mocks.NewMockEventStore(),
		notifier: &recordingEmitter{},
	}
	env.handler = NewHandler(env.carts, ledger, env.orders, env.journal, env.notifier)
	return env
}

func newTestEnv(seed ...*product.Product) *testEnv {
	return newTestHandler(product.NewMemoryLedger(seed...), cart.NewMemoryRepository())
}

func testAddress() order.Address {
	return order.Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Street:    "12 Analytical Way",
		City:      "London",
		ZipCode:   "N1 7AA",
		Country:   "UK",
	}
}

func apple() *product.Product {
	return &product.Product{ID: "prod-a", Name: "Apple", Price: 10, Stock: 5, LowStockThreshold: 1}
}

func banana() *product.Product {
	return &product.Product{ID: "prod-b", Name: "Banana", Price: 5, Stock: 3, LowStockThreshold: 1}
}

func (env *testEnv) add(t *testing.T, userID, productID string, qty int) {
	t.Helper()
	_, err := env.handler.AddToCart(context.Background(), AddToCart{UserID: userID, ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}

func (env *testEnv) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := env.ledger.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (env *testEnv) cartItems(t *testing.T, userID string) []cart.Item {
	t.Helper()
	c, err := env.carts.Current(context.Background(), userID)
	require.NoError(t, err)
	return c.Items
}

func checkoutErr(t *testing.T, err error) *CheckoutError {
	t.Helper()
	var cerr *CheckoutError
	require.ErrorAs(t, err, &cerr)
	return cerr
}

// racingLedger fails decrements of one product as if a concurrent checkout
// had taken the stock after the pre-check
type racingLedger struct {
	*product.MemoryLedger
	lose string
}

func (l *racingLedger) DecrementStock(ctx context.Context, id string, amount int) (*product.Product, error) {
	if id == l.lose {
		return nil, fmt.Errorf("%w: %s sold out", product.ErrInsufficientStock, id)
	}
	return l.MemoryLedger.DecrementStock(ctx, id, amount)
}

// clearFailingRepository refuses to store an emptied cart
type clearFailingRepository struct {
	*cart.MemoryRepository
}

func (r *clearFailingRepository) Save(ctx context.Context, c *cart.Cart) error {
	if c.IsEmpty() {
		return errors.New("disk full")
	}
	return r.MemoryRepository.Save(ctx, c)
}

// hookedLedger runs onDecrement before the first stock decrement
type hookedLedger struct {
	*product.MemoryLedger
	once        sync.Once
	onDecrement func()
}

func (l *hookedLedger) DecrementStock(ctx context.Context, id string, amount int) (*product.Product, error) {
	l.once.Do(l.onDecrement)
	return l.MemoryLedger.DecrementStock(ctx, id, amount)
}

type brokenCartRepository struct{}

func (brokenCartRepository) Get(context.Context, string) (*cart.Cart, error) {
	return nil, errors.New("connection refused")
}

func (brokenCartRepository) Save(context.Context, *cart.Cart) error {
	return errors.New("connection refused")
}

// =============================================================================
// PlaceOrder Tests
// =============================================================================

func TestPlaceOrder_Success(t *testing.T) {
	env := newTestEnv(apple(), banana())
	env.add(t, "user-1", "prod-a", 2)
	env.add(t, "user-1", "prod-b", 1)

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, 25, o.TotalPrice)
	assert.Equal(t, "user-1", o.OwnerID)
	assert.Equal(t, []order.LineItem{
		{ProductID: "prod-a", Name: "Apple", Quantity: 2, UnitPrice: 10},
		{ProductID: "prod-b", Name: "Banana", Quantity: 1, UnitPrice: 5},
	}, o.Items)

	assert.Equal(t, 3, env.stock(t, "prod-a"))
	assert.Equal(t, 2, env.stock(t, "prod-b"))
	assert.Empty(t, env.cartItems(t, "user-1"))

	stored, err := env.orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.TotalPrice, stored.TotalPrice)
}

func TestPlaceOrder_NotifiesAdminsOnly(t *testing.T) {
	env := newTestEnv(apple(), banana())
	env.add(t, "user-1", "prod-a", 2)
	env.add(t, "user-1", "prod-b", 1)

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})
	require.NoError(t, err)

	admin := env.notifier.to(notification.AdminAudience)
	require.Len(t, admin, 1)
	assert.Equal(t, notification.KindNewOrder, admin[0].Kind)
	assert.Equal(t, NewOrderAlert{
		OrderID:      o.ID,
		CustomerName: "Ada Lovelace",
		Total:        25,
		ItemCount:    3,
		CreatedAt:    o.CreatedAt,
	}, admin[0].Payload)

	assert.Empty(t, env.notifier.to(notification.UserAudience("user-1")))
}

func TestPlaceOrder_JournalsOrderPlaced(t *testing.T) {
	env := newTestEnv(apple())
	env.add(t, "user-1", "prod-a", 1)

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})
	require.NoError(t, err)

	calls := env.journal.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, o.ID, calls[0].AggregateID)
	assert.Equal(t, order.AggregateType, calls[0].AggregateType)
	assert.Equal(t, order.EventOrderPlaced, calls[0].EventType)

	placed, ok := calls[0].Data.(order.OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", placed.CustomerEmail)
	assert.Equal(t, "Ada Lovelace", placed.CustomerName)
	assert.Equal(t, 10, placed.Total)
}

func TestPlaceOrder_JournalFailureIsNotSurfaced(t *testing.T) {
	env := newTestEnv(apple())
	env.journal.AppendErr = errors.New("postgres down")
	env.add(t, "user-1", "prod-a", 1)

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	require.NoError(t, err)
	assert.NotNil(t, o)
	assert.Len(t, env.notifier.to(notification.AdminAudience), 1)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	env := newTestEnv(apple())

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrEmptyCart)
	cerr := checkoutErr(t, err)
	assert.Equal(t, StageCartValidated, cerr.Stage)
	assert.False(t, cerr.OrderPersisted())

	orders, _ := env.orders.ListAll(context.Background())
	assert.Empty(t, orders)
	assert.Empty(t, env.notifier.events)
	assert.Empty(t, env.journal.Calls())
}

func TestPlaceOrder_InvalidAddress(t *testing.T) {
	env := newTestEnv(apple())
	env.add(t, "user-1", "prod-a", 1)

	addr := testAddress()
	addr.Email = "not-an-email"
	addr.City = ""

	_, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: addr})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StageStarted, checkoutErr(t, err).Stage)

	var verr *order.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Equal(t, 5, env.stock(t, "prod-a"))
}

func TestPlaceOrder_ProductRemovedAfterAdd(t *testing.T) {
	env := newTestEnv(apple(), banana())
	env.add(t, "user-1", "prod-a", 1)
	env.add(t, "user-1", "prod-b", 1)
	require.NoError(t, env.handler.DeleteProduct(context.Background(), DeleteProduct{ProductID: "prod-b"}))

	_, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	assert.ErrorIs(t, err, ErrProductUnavailable)
	cerr := checkoutErr(t, err)
	assert.Equal(t, StagePriceComputed, cerr.Stage)
	assert.False(t, cerr.OrderPersisted())

	assert.Equal(t, 5, env.stock(t, "prod-a"))
	assert.Len(t, env.cartItems(t, "user-1"), 2)
	orders, _ := env.orders.ListAll(context.Background())
	assert.Empty(t, orders)
}

func TestPlaceOrder_InsufficientStockPreCheck(t *testing.T) {
	env := newTestEnv(banana())
	env.add(t, "user-1", "prod-b", 4)

	_, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	cerr := checkoutErr(t, err)
	assert.Equal(t, StagePriceComputed, cerr.Stage)
	assert.False(t, cerr.OrderPersisted())
	assert.Equal(t, 3, env.stock(t, "prod-b"))
	assert.Len(t, env.cartItems(t, "user-1"), 1)
}

func TestPlaceOrder_UsesPriceAtCheckout(t *testing.T) {
	env := newTestEnv(apple())
	env.add(t, "user-1", "prod-a", 2)

	threshold := 1
	_, err := env.handler.UpsertProduct(context.Background(), UpsertProduct{
		ProductID: "prod-a", Name: "Apple", Price: 12, Stock: 5, LowStockThreshold: &threshold,
	})
	require.NoError(t, err)

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})
	require.NoError(t, err)
	assert.Equal(t, 24, o.TotalPrice)
	assert.Equal(t, 12, o.Items[0].UnitPrice)

	_, err = env.handler.UpsertProduct(context.Background(), UpsertProduct{
		ProductID: "prod-a", Name: "Apple", Price: 15, Stock: 3, LowStockThreshold: &threshold,
	})
	require.NoError(t, err)

	stored, err := env.orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 24, stored.TotalPrice)
	assert.Equal(t, 12, stored.Items[0].UnitPrice)
}

func TestPlaceOrder_ConcurrentCheckoutsForLastUnit(t *testing.T) {
	env := newTestEnv(&product.Product{ID: "prod-last", Name: "Last One", Price: 100, Stock: 1})

	const buyers = 10
	for i := 0; i < buyers; i++ {
		env.add(t, fmt.Sprintf("user-%d", i), "prod-last", 1)
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.handler.PlaceOrder(context.Background(), PlaceOrder{
				UserID:  fmt.Sprintf("user-%d", i),
				Address: testAddress(),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, env.stock(t, "prod-last"))

	orders, err := env.orders.ListAll(context.Background())
	require.NoError(t, err)
	live := 0
	for _, o := range orders {
		if o.Status != order.StatusCancelled {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestPlaceOrder_CompensatesWhenDecrementLosesRace(t *testing.T) {
	ledger := &racingLedger{MemoryLedger: product.NewMemoryLedger(apple(), banana()), lose: "prod-b"}
	env := newTestHandler(ledger, cart.NewMemoryRepository())
	env.add(t, "user-1", "prod-a", 2)
	env.add(t, "user-1", "prod-b", 1)

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	cerr := checkoutErr(t, err)
	assert.Equal(t, StageStockAdjusted, cerr.Stage)
	require.True(t, cerr.OrderPersisted())
	assert.Equal(t, order.StatusCancelled, cerr.Order.Status)

	assert.Equal(t, 5, env.stock(t, "prod-a"))
	assert.Equal(t, 3, env.stock(t, "prod-b"))
	assert.Len(t, env.cartItems(t, "user-1"), 2)

	stored, err := env.orders.Get(context.Background(), cerr.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, stored.Status)

	calls := env.journal.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, order.EventCheckoutCompensated, calls[0].EventType)
	compensated := calls[0].Data.(order.CheckoutCompensated)
	assert.Equal(t, "prod-b", compensated.FailedProduct)
	assert.Equal(t, map[string]int{"prod-a": 2}, compensated.Restored)

	assert.NotContains(t, env.notifier.kinds(notification.AdminAudience), notification.KindNewOrder)
}

func TestPlaceOrder_CartClearFailureKeepsOrder(t *testing.T) {
	env := newTestHandler(product.NewMemoryLedger(apple()), &clearFailingRepository{cart.NewMemoryRepository()})
	env.add(t, "user-1", "prod-a", 2)

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	require.NotNil(t, o)
	assert.ErrorIs(t, err, ErrStorage)
	cerr := checkoutErr(t, err)
	assert.Equal(t, StageCartCleared, cerr.Stage)
	assert.Equal(t, o, cerr.Order)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, 3, env.stock(t, "prod-a"))
	assert.Len(t, env.cartItems(t, "user-1"), 1)

	assert.Equal(t, []string{order.EventCheckoutIncomplete, order.EventOrderPlaced}, env.journal.EventTypes())
	assert.Equal(t, []notification.Kind{notification.KindNewOrder}, env.notifier.kinds(notification.AdminAudience))
}

func TestPlaceOrder_KeepsItemsAddedDuringCheckout(t *testing.T) {
	ledger := &hookedLedger{MemoryLedger: product.NewMemoryLedger(apple(), banana())}
	env := newTestHandler(ledger, cart.NewMemoryRepository())
	env.add(t, "user-1", "prod-a", 2)
	ledger.onDecrement = func() {
		env.add(t, "user-1", "prod-a", 1)
		env.add(t, "user-1", "prod-b", 1)
	}

	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, []cart.Item{
		{ProductID: "prod-a", Quantity: 1},
		{ProductID: "prod-b", Quantity: 1},
	}, env.cartItems(t, "user-1"))
}

func TestPlaceOrder_StorageFailure(t *testing.T) {
	env := newTestHandler(product.NewMemoryLedger(apple()), brokenCartRepository{})

	_, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})

	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, StageCartValidated, checkoutErr(t, err).Stage)
}

func TestPlaceOrder_LowStockAlert(t *testing.T) {
	env := newTestEnv(&product.Product{ID: "prod-c", Name: "Cherry", Price: 3, Stock: 12, LowStockThreshold: 10})
	env.add(t, "user-1", "prod-c", 3)

	_, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Address: testAddress()})
	require.NoError(t, err)

	admin := env.notifier.to(notification.AdminAudience)
	require.Len(t, admin, 2)
	assert.Equal(t, notification.KindLowStockAlert, admin[0].Kind)
	assert.Equal(t, LowStockAlert{ProductID: "prod-c", Name: "Cherry", Stock: 9, Threshold: 10}, admin[0].Payload)
	assert.Equal(t, notification.KindNewOrder, admin[1].Kind)
}

// =============================================================================
// UpdateOrderStatus Tests
// =============================================================================

func placeTestOrder(t *testing.T, env *testEnv, userID string) *order.Order {
	t.Helper()
	env.add(t, userID, "prod-a", 1)
	o, err := env.handler.PlaceOrder(context.Background(), PlaceOrder{UserID: userID, Address: testAddress()})
	require.NoError(t, err)
	return o
}

func TestUpdateOrderStatus_NotifiesAdminsAndOwner(t *testing.T) {
	env := newTestEnv(apple())
	o := placeTestOrder(t, env, "user-1")

	updated, err := env.handler.UpdateOrderStatus(context.Background(), UpdateOrderStatus{OrderID: o.ID, Status: "Shipped"})

	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)
	assert.Equal(t, o.TotalPrice, updated.TotalPrice)

	assert.Equal(t, []notification.Kind{notification.KindNewOrder, notification.KindOrderUpdated},
		env.notifier.kinds(notification.AdminAudience))

	owner := env.notifier.to(notification.UserAudience("user-1"))
	require.Len(t, owner, 1)
	assert.Equal(t, notification.KindOrderStatusChanged, owner[0].Kind)
	change := owner[0].Payload.(StatusChange)
	assert.Equal(t, order.StatusShipped, change.Status)
	assert.Equal(t, order.StatusPending, change.PreviousStatus)

	assert.Empty(t, env.notifier.to(notification.UserAudience("user-2")))

	calls := env.journal.Calls()
	require.Len(t, calls, 2)
	changed := calls[1].Data.(order.OrderStatusChanged)
	assert.Equal(t, order.StatusPending, changed.From)
	assert.Equal(t, order.StatusShipped, changed.To)
	assert.Equal(t, "ada@example.com", changed.CustomerEmail)
}

func TestUpdateOrderStatus_AnyTransitionAllowed(t *testing.T) {
	env := newTestEnv(apple())
	o := placeTestOrder(t, env, "user-1")

	for _, status := range []string{"Delivered", "Pending", "Cancelled", "Processing"} {
		updated, err := env.handler.UpdateOrderStatus(context.Background(), UpdateOrderStatus{OrderID: o.ID, Status: status})
		require.NoError(t, err)
		assert.Equal(t, order.Status(status), updated.Status)
	}
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	env := newTestEnv(apple())
	o := placeTestOrder(t, env, "user-1")
	before := len(env.notifier.events)

	_, err := env.handler.UpdateOrderStatus(context.Background(), UpdateOrderStatus{OrderID: o.ID, Status: "shipped"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, env.notifier.events, before)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	env := newTestEnv()

	_, err := env.handler.UpdateOrderStatus(context.Background(), UpdateOrderStatus{OrderID: "missing", Status: "Shipped"})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

// =============================================================================
// Product Tests
// =============================================================================

func TestUpsertProduct_CreateThenUpdate(t *testing.T) {
	env := newTestEnv()

	p, err := env.handler.UpsertProduct(context.Background(), UpsertProduct{ProductID: "prod-n", Name: "Nectarine", Price: 7, Stock: 50})
	require.NoError(t, err)
	assert.Equal(t, product.DefaultLowStockThreshold, p.LowStockThreshold)

	_, err = env.handler.UpsertProduct(context.Background(), UpsertProduct{ProductID: "prod-n", Name: "Nectarine", Price: 8, Stock: 50})
	require.NoError(t, err)

	assert.Equal(t, []notification.Kind{notification.KindProductCreated, notification.KindProductUpdated},
		env.notifier.kinds(notification.AdminAudience))
}

func TestUpsertProduct_LowStockAlert(t *testing.T) {
	env := newTestEnv()

	_, err := env.handler.UpsertProduct(context.Background(), UpsertProduct{ProductID: "prod-n", Name: "Nectarine", Price: 7, Stock: 4})
	require.NoError(t, err)

	assert.Equal(t, []notification.Kind{notification.KindProductCreated, notification.KindLowStockAlert},
		env.notifier.kinds(notification.AdminAudience))
}

func TestUpsertProduct_Invalid(t *testing.T) {
	env := newTestEnv()

	_, err := env.handler.UpsertProduct(context.Background(), UpsertProduct{ProductID: "prod-n", Price: -1})

	assert.ErrorIs(t, err, product.ErrInvalidProduct)
	assert.Empty(t, env.notifier.events)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(apple())

	require.NoError(t, env.handler.DeleteProduct(context.Background(), DeleteProduct{ProductID: "prod-a"}))
	assert.Equal(t, []notification.Kind{notification.KindProductDeleted}, env.notifier.kinds(notification.AdminAudience))

	err := env.handler.DeleteProduct(context.Background(), DeleteProduct{ProductID: "prod-a"})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

// =============================================================================
// Cart Tests
// =============================================================================

func TestCartCommands(t *testing.T) {
	env := newTestEnv(apple(), banana())
	ctx := context.Background()

	c, err := env.handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-a", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, c.ItemCount())

	c, err = env.handler.UpdateCartItem(ctx, UpdateCartItem{UserID: "user-1", ProductID: "prod-a", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, c.ItemCount())

	c, err = env.handler.RemoveFromCart(ctx, RemoveFromCart{UserID: "user-1", ProductID: "prod-a"})
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	c, err = env.handler.ClearCart(ctx, ClearCart{UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCartCommands_Errors(t *testing.T) {
	env := newTestEnv(apple())
	ctx := context.Background()

	_, err := env.handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	_, err = env.handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-a", Quantity: 0})
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	broken := newTestHandler(product.NewMemoryLedger(apple()), brokenCartRepository{})
	_, err = broken.handler.ClearCart(ctx, ClearCart{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrStorage)
}
