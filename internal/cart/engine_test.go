package cart

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStorage is an in-memory Storage
type memoryStorage struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *memoryStorage) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memoryStorage) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func product(id string, stock int, price string) Product {
	return Product{ID: id, Name: "Product " + id, Unit: "un", Stock: stock, Price: decimal.RequireFromString(price)}
}

func newHydrated(t *testing.T, storage Storage, opts ...Option) *Engine {
	t.Helper()
	e := NewEngine(storage, opts...)
	require.NoError(t, e.Hydrate(context.Background()))
	return e
}

func assertTotals(t *testing.T, s State) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range s.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, sum.Equal(s.Subtotal), "subtotal %s != %s", s.Subtotal, sum)
	assert.True(t, s.Subtotal.Add(s.DeliveryFee).Equal(s.Total))
}

func TestEngine_AddIncrementRemove(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	s, err := e.AddItem(ctx, Product{ID: "p1", Stock: 5, Price: decimal.RequireFromString("10.00")}, 2)
	require.NoError(t, err)
	assert.Equal(t, "20", s.Subtotal.String())

	s, err = e.AddItem(ctx, Product{ID: "p1"}, 1)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 3, s.Items[0].Quantity)
	assert.Equal(t, "30", s.Subtotal.String())

	s, err = e.UpdateQuantity(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, s.Items)
	assert.True(t, s.Subtotal.IsZero())
}

func TestEngine_AddItem_ClampsToStock(t *testing.T) {
	e := newHydrated(t, &memoryStorage{})

	s, err := e.AddItem(context.Background(), product("p1", 3, "4.50"), 10)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 3, s.Items[0].Quantity)
}

func TestEngine_AddItem_ExistingLineStopsAtCeiling(t *testing.T) {
	ctx := context.Background()
	storage := &memoryStorage{}
	e := newHydrated(t, storage)

	_, err := e.AddItem(ctx, product("p1", 2, "1"), 2)
	require.NoError(t, err)
	saves := storage.saves

	s, err := e.AddItem(ctx, product("p1", 2, "1"), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.Equal(t, saves, storage.saves, "no-op add must not write")
}

func TestEngine_AddItem_HugeQuantityOnExistingLine(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	_, err := e.AddItem(ctx, product("p1", 5, "3"), 1)
	require.NoError(t, err)

	s, err := e.AddItem(ctx, product("p1", 5, "3"), math.MaxInt)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 5, s.Items[0].Quantity)
	assert.False(t, s.Subtotal.IsNegative())
	assert.Equal(t, "15", s.Subtotal.String())
	assertTotals(t, s)

	s, err = e.AddItem(ctx, product("p2", 2, "1"), math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Items[1].Quantity)
}

func TestEngine_AddItem_DefaultsAndEdgeCases(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	s, err := e.AddItem(ctx, product("p1", 5, "2"), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Items[0].Quantity)

	s, err = e.AddItem(ctx, product("sold-out", 0, "2"), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.ItemCount, "product without stock is ignored")
}

func TestEngine_NoDuplicateLines(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	for i := 0; i < 3; i++ {
		_, err := e.AddItem(ctx, product("p1", 10, "1"), 1)
		require.NoError(t, err)
	}
	s := e.State()
	require.Len(t, s.Items, 1)
	assert.Equal(t, 3, s.Items[0].Quantity)
}

func TestEngine_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	_, err := e.AddItem(ctx, product("p1", 5, "3.00"), 2)
	require.NoError(t, err)
	before, err := e.AddItem(ctx, product("p2", 5, "7.25"), 1)
	require.NoError(t, err)

	after, err := e.UpdateQuantity(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, before.ItemCount-1, after.ItemCount)
	assert.Equal(t, "7.25", after.Subtotal.String())
	assertTotals(t, after)
}

func TestEngine_UpdateQuantity_ClampsAndIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	_, err := e.AddItem(ctx, product("p1", 4, "1"), 1)
	require.NoError(t, err)

	s, err := e.UpdateQuantity(ctx, "p1", 99)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Items[0].Quantity)

	s, err = e.UpdateQuantity(ctx, "ghost", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, s.ItemCount)
}

func TestEngine_RemoveItem(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	_, err := e.AddItem(ctx, product("p1", 4, "1"), 1)
	require.NoError(t, err)

	s, err := e.RemoveItem(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, s.ItemCount)

	s, err = e.RemoveItem(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, s.ItemCount)
}

func TestEngine_TotalsInvariant(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{}, WithDeliveryFee(decimal.RequireFromString("5.00")))

	steps := []func() (State, error){
		func() (State, error) { return e.AddItem(ctx, product("a", 3, "9.90"), 2) },
		func() (State, error) { return e.AddItem(ctx, product("b", 10, "0.35"), 7) },
		func() (State, error) { return e.AddItem(ctx, product("a", 3, "9.90"), 5) },
		func() (State, error) { return e.UpdateQuantity(ctx, "b", 4) },
		func() (State, error) { return e.AddItem(ctx, product("c", 1, "120.00"), 1) },
		func() (State, error) { return e.RemoveItem(ctx, "a") },
		func() (State, error) { return e.UpdateQuantity(ctx, "c", -1) },
	}

	for i, step := range steps {
		s, err := step()
		require.NoError(t, err, "step %d", i)
		assertTotals(t, s)
	}

	s := e.State()
	assert.Equal(t, "1.4", s.Subtotal.String())
	assert.Equal(t, "6.4", s.Total.String())
}

func TestEngine_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := &memoryStorage{}
	e := newHydrated(t, storage)

	_, err := e.AddItem(ctx, product("p1", 5, "10.00"), 2)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, product("p2", 3, "4.99"), 3)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, product("p3", 9, "0.50"), 7)
	require.NoError(t, err)
	slot := "19:30"
	_, err = e.SetScheduledTime(ctx, &slot)
	require.NoError(t, err)

	fresh := NewEngine(storage)
	assert.True(t, fresh.State().IsLoading)
	require.NoError(t, fresh.Hydrate(ctx))

	s := fresh.State()
	assert.False(t, s.IsLoading)
	require.Equal(t, 3, s.ItemCount)
	assert.Equal(t, []int{2, 3, 7}, []int{s.Items[0].Quantity, s.Items[1].Quantity, s.Items[2].Quantity})
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{s.Items[0].ProductID, s.Items[1].ProductID, s.Items[2].ProductID})
	require.NotNil(t, s.ScheduledTime)
	assert.Equal(t, "19:30", *s.ScheduledTime)
	assert.True(t, e.State().Subtotal.Equal(s.Subtotal))
}

func TestEngine_Hydrate_EmptyOrCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "absent", data: nil},
		{name: "garbage", data: []byte("{not json")},
		{name: "wrong shape", data: []byte(`{"items":"nope"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(&memoryStorage{data: tt.data})
			require.NoError(t, e.Hydrate(context.Background()))

			s := e.State()
			assert.False(t, s.IsLoading)
			assert.Empty(t, s.Items)
			assert.Nil(t, s.ScheduledTime)
		})
	}
}

func TestEngine_Hydrate_SanitizesSnapshot(t *testing.T) {
	data := []byte(`{"items":[
		{"productId":"p1","name":"A","stock":2,"price":"1.00","quantity":9},
		{"productId":"p1","name":"A again","stock":2,"price":"1.00","quantity":1},
		{"productId":"p2","name":"B","stock":3,"price":"2.00","quantity":0}
	],"scheduledTime":"asap"}`)

	e := NewEngine(&memoryStorage{data: data})
	require.NoError(t, e.Hydrate(context.Background()))

	s := e.State()
	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)
	require.NotNil(t, s.ScheduledTime)
	assert.Equal(t, ASAP, *s.ScheduledTime)
}

func TestEngine_Hydrate_StorageError(t *testing.T) {
	e := NewEngine(&memoryStorage{loadErr: errors.New("redis down")})

	err := e.Hydrate(context.Background())
	require.Error(t, err)

	s := e.State()
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Items)
}

func TestEngine_PersistFailureIsReported(t *testing.T) {
	storage := &memoryStorage{}
	e := newHydrated(t, storage)
	storage.saveErr = errors.New("disk full")

	s, err := e.AddItem(context.Background(), product("p1", 2, "1"), 1)
	require.Error(t, err)
	assert.Equal(t, 1, s.ItemCount)
}

func TestEngine_ClearResetsScheduledTime(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	_, err := e.AddItem(ctx, product("p1", 2, "1"), 1)
	require.NoError(t, err)
	asap := ASAP
	_, err = e.SetScheduledTime(ctx, &asap)
	require.NoError(t, err)

	s, err := e.Clear(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.Items)
	assert.Nil(t, s.ScheduledTime)
	assert.True(t, s.Total.IsZero())
}

func TestEngine_Subscribe(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	var header, floating []int
	unsubHeader := e.Subscribe(func(s State) { header = append(header, s.TotalQuantity) })
	e.Subscribe(func(s State) { floating = append(floating, s.TotalQuantity) })

	_, err := e.AddItem(ctx, product("p1", 5, "1"), 2)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, product("p2", 5, "1"), 1)
	require.NoError(t, err)

	unsubHeader()
	_, err = e.RemoveItem(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, header)
	assert.Equal(t, []int{2, 3, 1}, floating)
}

func TestEngine_Validate(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	_, err := e.AddItem(ctx, Product{ID: "p1", Name: "Pastel", Stock: 5, Price: decimal.NewFromInt(8)}, 4)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, Product{ID: "p2", Name: "Caldo", Stock: 5, Price: decimal.NewFromInt(12)}, 1)
	require.NoError(t, err)
	_, err = e.AddItem(ctx, Product{ID: "p3", Name: "Suco", Stock: 5, Price: decimal.NewFromInt(6)}, 1)
	require.NoError(t, err)

	problems := e.Validate(map[string]int{"p1": 2, "p2": 10})
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "Pastel")
	assert.Contains(t, problems[0], "only 2 left")
	assert.Contains(t, problems[1], "Suco is no longer available")

	assert.Equal(t, 4, e.State().Items[0].Quantity, "validation never mutates")
	assert.Empty(t, e.Validate(map[string]int{"p1": 4, "p2": 1, "p3": 1}))
}

func TestEngine_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	e := newHydrated(t, &memoryStorage{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.AddItem(ctx, product("p1", 1000, "0.10"), 1)
		}()
	}
	wg.Wait()

	s := e.State()
	assert.Equal(t, 50, s.Items[0].Quantity)
	assert.Equal(t, "5", s.Subtotal.String())
}
