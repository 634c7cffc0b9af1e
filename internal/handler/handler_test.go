package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/akasa-feast/internal/auth"
	"github.com/xenking/akasa-feast/internal/domain/cart"
	"github.com/xenking/akasa-feast/internal/domain/catalog"
	"github.com/xenking/akasa-feast/internal/domain/order"
	"github.com/xenking/akasa-feast/internal/domain/payment"
	"github.com/xenking/akasa-feast/internal/domain/user"
)

// --- In-memory backing store ---

// memDB backs every repository interface with maps so the full HTTP surface
// can be exercised without a database.
type memDB struct {
	mu         sync.Mutex
	users      map[int64]user.User
	byEmail    map[string]int64
	items      map[int64]catalog.Item
	categories []catalog.Category
	cartLines  map[int64]cart.Line
	orders     map[int64]order.Order
	orderLines map[int64][]order.Line
	payments   []payment.Payment
	nextID     int64
}

func newMemDB() *memDB {
	return &memDB{
		users:      make(map[int64]user.User),
		byEmail:    make(map[string]int64),
		items:      make(map[int64]catalog.Item),
		cartLines:  make(map[int64]cart.Line),
		orders:     make(map[int64]order.Order),
		orderLines: make(map[int64][]order.Line),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) addCategory(name string) catalog.Category {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := catalog.Category{ID: db.id(), Name: name}
	db.categories = append(db.categories, c)
	return c
}

func (db *memDB) addItem(name string, priceCents int64, stock int, categoryID int64) catalog.Item {
	db.mu.Lock()
	defer db.mu.Unlock()
	it := catalog.Item{ID: db.id(), Name: name, PriceCents: priceCents, Stock: stock, CategoryID: categoryID}
	db.items[it.ID] = it
	return it
}

func (db *memDB) item(id int64) catalog.Item {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.items[id]
}

// user.Repository

func (db *memDB) Create(_ context.Context, email, passwordHash string) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, taken := db.byEmail[email]; taken {
		return nil, user.ErrEmailTaken
	}
	u := user.User{ID: db.id(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	db.users[u.ID] = u
	db.byEmail[email] = u.ID
	return &u, nil
}

func (db *memDB) GetByEmail(_ context.Context, email string) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	id, ok := db.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	u := db.users[id]
	return &u, nil
}

func (db *memDB) GetByID(_ context.Context, id int64) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

// catalog.Repository

func (db *memDB) ListItems(_ context.Context, categoryName string) ([]catalog.Item, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var categoryID int64
	if categoryName != "" {
		for _, c := range db.categories {
			if c.Name == categoryName {
				categoryID = c.ID
			}
		}
	}
	var out []catalog.Item
	for _, it := range db.items {
		if categoryName == "" || it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b catalog.Item) int { return int(a.ID - b.ID) })
	return out, nil
}

func (db *memDB) GetItem(_ context.Context, id int64) (*catalog.Item, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	it, ok := db.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &it, nil
}

func (db *memDB) ListCategories(_ context.Context) ([]catalog.Category, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.categories), nil
}

// cart.Repository

func (db *memDB) Lines(_ context.Context, userID int64) ([]cart.Line, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.linesLocked(userID), nil
}

func (db *memDB) linesLocked(userID int64) []cart.Line {
	var out []cart.Line
	for _, l := range db.cartLines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b cart.Line) int { return int(a.ID - b.ID) })
	return out
}

func (db *memDB) UpsertLine(_ context.Context, userID, itemID int64, quantity int) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for id, l := range db.cartLines {
		if l.UserID == userID && l.ItemID == itemID {
			l.Quantity += quantity
			db.cartLines[id] = l
			return nil
		}
	}
	l := cart.Line{ID: db.id(), UserID: userID, ItemID: itemID, Quantity: quantity, AddedAt: time.Now()}
	db.cartLines[l.ID] = l
	return nil
}

func (db *memDB) SetQuantity(_ context.Context, userID, lineID int64, quantity int) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.cartLines[lineID]
	if !ok || l.UserID != userID {
		return cart.ErrLineNotFound
	}
	if quantity <= 0 {
		delete(db.cartLines, lineID)
		return nil
	}
	l.Quantity = quantity
	db.cartLines[lineID] = l
	return nil
}

func (db *memDB) DeleteLine(_ context.Context, userID, lineID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.cartLines[lineID]
	if !ok || l.UserID != userID {
		return cart.ErrLineNotFound
	}
	delete(db.cartLines, lineID)
	return nil
}

func (db *memDB) Clear(_ context.Context, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clearLocked(userID)
	return nil
}

func (db *memDB) clearLocked(userID int64) {
	for id, l := range db.cartLines {
		if l.UserID == userID {
			delete(db.cartLines, id)
		}
	}
}

// --- Transactional stores ---

// inTx snapshots mutable state and restores it when fn fails, mirroring a
// rolled-back database transaction.
func (db *memDB) inTx(fn func(tx *memTx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	items := maps.Clone(db.items)
	cartLines := maps.Clone(db.cartLines)
	orders := maps.Clone(db.orders)
	orderLines := maps.Clone(db.orderLines)
	payments := slices.Clone(db.payments)
	nextID := db.nextID

	if err := fn(&memTx{db: db}); err != nil {
		db.items, db.cartLines, db.orders = items, cartLines, orders
		db.orderLines, db.payments, db.nextID = orderLines, payments, nextID
		return err
	}
	return nil
}

type memTx struct {
	db *memDB
}

var (
	_ order.Tx   = (*memTx)(nil)
	_ payment.Tx = (*memTx)(nil)
)

func (tx *memTx) CartLines(_ context.Context, userID int64) ([]cart.Line, error) {
	return tx.db.linesLocked(userID), nil
}

func (tx *memTx) ItemsByIDs(_ context.Context, ids []int64) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, id := range ids {
		if it, ok := tx.db.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (tx *memTx) InsertOrder(_ context.Context, o *order.Order) error {
	o.ID = tx.db.id()
	o.CreatedAt = time.Now()
	tx.db.orders[o.ID] = *o
	return nil
}

func (tx *memTx) InsertLines(_ context.Context, lines []order.Line) error {
	for _, l := range lines {
		l.ID = tx.db.id()
		tx.db.orderLines[l.OrderID] = append(tx.db.orderLines[l.OrderID], l)
	}
	return nil
}

func (tx *memTx) DecrementStock(_ context.Context, itemID int64, quantity int) (bool, error) {
	it, ok := tx.db.items[itemID]
	if !ok || it.Stock < quantity {
		return false, nil
	}
	it.Stock -= quantity
	tx.db.items[itemID] = it
	return true, nil
}

func (tx *memTx) ClearCart(_ context.Context, userID int64) error {
	tx.db.clearLocked(userID)
	return nil
}

func (tx *memTx) OrderForUpdate(_ context.Context, userID, orderID int64) (*order.Order, error) {
	o, ok := tx.db.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (tx *memTx) InsertPayment(_ context.Context, p *payment.Payment) error {
	p.ID = tx.db.id()
	p.CreatedAt = time.Now()
	tx.db.payments = append(tx.db.payments, *p)
	return nil
}

func (tx *memTx) MarkOrderPaid(_ context.Context, orderID int64) (bool, error) {
	o, ok := tx.db.orders[orderID]
	if !ok || o.PaymentStatus == order.PaymentPaid {
		return false, nil
	}
	o.PaymentStatus = order.PaymentPaid
	o.Status = order.StatusPlaced
	tx.db.orders[orderID] = o
	return true, nil
}

func (tx *memTx) OrderLines(_ context.Context, orderID int64) ([]order.Line, error) {
	return slices.Clone(tx.db.orderLines[orderID]), nil
}

type orderStore struct{ db *memDB }

func (s orderStore) InTx(_ context.Context, fn func(tx order.Tx) error) error {
	return s.db.inTx(func(tx *memTx) error { return fn(tx) })
}

func (s orderStore) OrderByID(_ context.Context, userID, orderID int64) (*order.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (s orderStore) OrdersByUser(_ context.Context, userID int64) ([]order.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []order.Order
	for _, o := range s.db.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b order.Order) int { return int(b.ID - a.ID) })
	return out, nil
}

func (s orderStore) LinesByOrder(_ context.Context, orderID int64) ([]order.Line, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return slices.Clone(s.db.orderLines[orderID]), nil
}

type paymentStore struct{ db *memDB }

func (s paymentStore) InTx(_ context.Context, fn func(tx payment.Tx) error) error {
	return s.db.inTx(func(tx *memTx) error { return fn(tx) })
}

func (s paymentStore) LatestByOrder(_ context.Context, orderID int64) (*payment.Payment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := len(s.db.payments) - 1; i >= 0; i-- {
		if s.db.payments[i].OrderID == orderID {
			p := s.db.payments[i]
			return &p, nil
		}
	}
	return nil, nil
}

// --- Test environment ---

type scriptedOutcome struct {
	approve bool
}

func (s *scriptedOutcome) Approve() bool { return s.approve }

type env struct {
	db      *memDB
	mux     http.Handler
	outcome *scriptedOutcome
}

func newEnv() *env {
	db := newMemDB()
	outcome := &scriptedOutcome{approve: true}

	h := New(
		auth.New(db, []byte("test-secret"), 0),
		db,
		db,
		order.NewService(orderStore{db: db}),
		payment.NewService(paymentStore{db: db}, outcome),
	)
	return &env{db: db, mux: h.Routes(), outcome: outcome}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *env) signup(t *testing.T, email string) string {
	t.Helper()

	creds := map[string]string{"email": email, "password": "sup3rsecret"}
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	return tok.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- Tests ---

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv()
	creds := map[string]string{"email": "dup@example.com", "password": "sup3rsecret"}

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, http.StatusConflict, decodeBody[errorResponse](t, rec).Code)
}

func TestRegister_WeakPassword(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "weak@example.com",
		"password": "letters",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_SetsCookie(t *testing.T) {
	e := newEnv()
	creds := map[string]string{"email": "cookie@example.com", "password": "sup3rsecret"}
	e.do(t, http.MethodPost, "/api/auth/register", "", creds)

	rec := e.do(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)

	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == AccessTokenCookie {
			found = c
		}
	}
	require.NotNil(t, found, "login must set the access_token cookie")
	assert.True(t, found.HttpOnly)

	// The cookie alone must authenticate.
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(found)
	cookieRec := httptest.NewRecorder()
	e.mux.ServeHTTP(cookieRec, req)
	assert.Equal(t, http.StatusOK, cookieRec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv()
	e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "who@example.com", "password": "sup3rsecret",
	})

	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "who@example.com", "password": "wr0ngpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalog(t *testing.T) {
	e := newEnv()
	mains := e.db.addCategory("Mains")
	e.db.addCategory("Drinks")
	burger := e.db.addItem("Burger", 550, 10, mains.ID)
	e.db.addItem("Lemonade", 250, 5, 0)

	rec := e.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]categoryResponse](t, rec), 2)

	rec = e.do(t, http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]itemResponse](t, rec), 2)

	rec = e.do(t, http.MethodGet, "/api/items?category=Mains", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filtered := decodeBody[[]itemResponse](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Burger", filtered[0].Name)
	assert.Equal(t, "5.50", filtered[0].Price)

	rec = e.do(t, http.MethodGet, fmt.Sprintf("/api/items/%d", burger.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/items/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_RequiresAuth(t *testing.T) {
	e := newEnv()

	rec := e.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCart_Flow(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 550, 10, 0)
	fries := e.db.addItem("Fries", 300, 10, 0)
	token := e.signup(t, "cart@example.com")

	rec := e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": burger.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": fries.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Adding an item already in the cart merges quantities.
	rec = e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": fries.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[cartResponse](t, rec)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "11.00", got.Lines[0].LineTotal)
	assert.Equal(t, 3, got.Lines[1].Quantity)
	assert.Equal(t, "20.00", got.Total)

	rec = e.do(t, http.MethodPut, fmt.Sprintf("/api/cart/items/%d", got.Lines[1].ID), token, map[string]int{"quantity": 1})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", got.Lines[0].ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cart", token, nil)
	got = decodeBody[cartResponse](t, rec)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "3.00", got.Total)

	rec = e.do(t, http.MethodDelete, "/api/cart", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Empty(t, decodeBody[cartResponse](t, rec).Lines)
}

func TestCart_Validation(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 550, 10, 0)
	token := e.signup(t, "cartval@example.com")

	rec := e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": burger.ID, "quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": int64(9999), "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/cart/items/9999", token, map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_Immediate(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 500, 10, 0)
	token := e.signup(t, "buyer@example.com")

	rec := e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": burger.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/orders/checkout", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decodeBody[orderResponse](t, rec)
	assert.Equal(t, "PLACED", o.Status)
	assert.Equal(t, "PAID", o.PaymentStatus)
	assert.Equal(t, "10.00", o.Total)
	assert.NotEmpty(t, o.TrackingID)

	assert.Equal(t, 8, e.db.item(burger.ID).Stock)

	rec = e.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Empty(t, decodeBody[cartResponse](t, rec).Lines)

	// The cart is gone, so a second checkout has nothing to buy.
	rec = e.do(t, http.MethodPost, "/api/orders/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 500, 2, 0)
	token := e.signup(t, "greedy@example.com")

	rec := e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": burger.ID, "quantity": 3})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/orders/checkout", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Message, "Burger")

	// Nothing was committed: stock and cart are untouched.
	assert.Equal(t, 2, e.db.item(burger.ID).Stock)
	rec = e.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Len(t, decodeBody[cartResponse](t, rec).Lines, 1)
}

func TestDeferredOrder_PaymentFlow(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 500, 10, 0)
	token := e.signup(t, "deferred@example.com")

	rec := e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": burger.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/orders/draft", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decodeBody[orderResponse](t, rec)
	assert.Equal(t, "PENDING_PAYMENT", o.Status)
	assert.Equal(t, "PENDING", o.PaymentStatus)

	// Drafting must not touch stock or cart.
	assert.Equal(t, 10, e.db.item(burger.ID).Stock)
	rec = e.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Len(t, decodeBody[cartResponse](t, rec).Lines, 1)

	card := map[string]string{
		"method":      "CREDIT_CARD",
		"card_number": "4111111111111111",
		"card_name":   "D Ferred",
		"card_expiry": "12/30",
		"card_cvv":    "123",
	}

	// First attempt declined: recorded, but the order stays payable.
	e.outcome.approve = false
	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/payment", o.ID), token, card)
	require.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())
	failed := decodeBody[paymentResponse](t, rec)
	assert.Equal(t, "FAILED", failed.Status)
	assert.NotEmpty(t, failed.TransactionID)
	assert.Equal(t, 10, e.db.item(burger.ID).Stock)

	// Retry approved: order flips to PAID/PLACED, stock moves, cart clears.
	e.outcome.approve = true
	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/payment", o.ID), token, card)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	success := decodeBody[paymentResponse](t, rec)
	assert.Equal(t, "SUCCESS", success.Status)
	assert.Equal(t, "10.00", success.Amount)
	assert.NotNil(t, success.CompletedAt)
	assert.NotEqual(t, failed.TransactionID, success.TransactionID)

	assert.Equal(t, 8, e.db.item(burger.ID).Stock)
	rec = e.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Empty(t, decodeBody[cartResponse](t, rec).Lines)

	rec = e.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", o.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[orderDetailResponse](t, rec)
	assert.Equal(t, "PLACED", detail.Status)
	assert.Equal(t, "PAID", detail.PaymentStatus)
	require.NotNil(t, detail.Payment)
	assert.Equal(t, "SUCCESS", detail.Payment.Status)

	// Paying a settled order is a conflict.
	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/payment", o.ID), token, card)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPayment_InvalidDetails(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 500, 10, 0)
	token := e.signup(t, "invalid@example.com")

	e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": burger.ID, "quantity": 1})
	rec := e.do(t, http.MethodPost, "/api/orders/draft", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	o := decodeBody[orderResponse](t, rec)

	payURL := fmt.Sprintf("/api/orders/%d/payment", o.ID)

	rec = e.do(t, http.MethodPost, payURL, token, map[string]string{"method": "CASH"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodPost, payURL, token, map[string]string{
		"method":      "CREDIT_CARD",
		"card_number": "1234",
		"card_name":   "Shorty",
		"card_expiry": "12/30",
		"card_cvv":    "123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodPost, payURL, token, map[string]string{"method": "UPI", "upi_id": "nobank"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Rejected attempts never reach the ledger.
	assert.Empty(t, e.db.payments)
}

func TestPayment_ImmediateOrderConflict(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 500, 10, 0)
	token := e.signup(t, "paid@example.com")

	e.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"item_id": burger.ID, "quantity": 1})
	rec := e.do(t, http.MethodPost, "/api/orders/checkout", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	o := decodeBody[orderResponse](t, rec)

	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/payment", o.ID), token, map[string]string{
		"method": "WALLET", "wallet_provider": "PayPocket",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrders_CrossUser(t *testing.T) {
	e := newEnv()
	burger := e.db.addItem("Burger", 500, 10, 0)
	owner := e.signup(t, "owner@example.com")
	other := e.signup(t, "other@example.com")

	e.do(t, http.MethodPost, "/api/cart/items", owner, map[string]any{"item_id": burger.ID, "quantity": 1})
	rec := e.do(t, http.MethodPost, "/api/orders/checkout", owner, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	o := decodeBody[orderResponse](t, rec)

	rec = e.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", o.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/orders", other, nil)
	assert.Empty(t, decodeBody[[]orderResponse](t, rec))

	rec = e.do(t, http.MethodGet, "/api/orders", owner, nil)
	assert.Len(t, decodeBody[[]orderResponse](t, rec), 1)
}
