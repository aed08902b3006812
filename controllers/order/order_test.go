package orderControllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/auth"
	"github.com/javiersgm/bistro-api/models"
	"github.com/javiersgm/bistro-api/routes"
)

type userRefResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type orderItemResponse struct {
	MenuItem struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"menu_item"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type orderResponse struct {
	ID           uint             `json:"id"`
	User         userRefResponse  `json:"user"`
	DeliveryCrew *userRefResponse `json:"delivery_crew"`
	Status       struct {
		Label string `json:"label"`
		Code  int    `json:"code"`
	} `json:"status"`
	Total decimal.Decimal     `json:"total"`
	Date  time.Time           `json:"date"`
	Items []orderItemResponse `json:"items"`
}

type orderListResponse struct {
	Count   int64           `json:"count"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Results []orderResponse `json:"results"`
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Group{}, &models.Category{}, &models.MenuItem{},
		&models.CartItem{}, &models.Order{}, &models.OrderItem{},
	))

	r := gin.New()
	routes.SetupRoutes(r, db)
	return r, db
}

func createUser(t *testing.T, db *gorm.DB, username string, groups ...string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	for _, name := range groups {
		var g models.Group
		require.NoError(t, db.Where(models.Group{Name: name}).FirstOrCreate(&g).Error)
		require.NoError(t, db.Model(user).Association("Groups").Append(&g))
	}
	require.NoError(t, db.Preload("Groups").First(user, user.ID).Error)
	return user
}

func createMenuItem(t *testing.T, db *gorm.DB, name, price string) *models.MenuItem {
	t.Helper()
	var cat models.Category
	require.NoError(t, db.Where(models.Category{Slug: "mains"}).
		Attrs(models.Category{Title: "Mains"}).FirstOrCreate(&cat).Error)
	item := &models.MenuItem{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Inventory:  100,
		CategoryID: cat.ID,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func fillCart(t *testing.T, db *gorm.DB, user *models.User, item *models.MenuItem, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{
		UserID:     user.ID,
		MenuItemID: item.ID,
		Quantity:   qty,
		UnitPrice:  item.Price,
		AddedAt:    time.Now(),
	}).Error)
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := auth.IssueToken(u)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func placeOrderFor(t *testing.T, r *gin.Engine, db *gorm.DB, user *models.User, item *models.MenuItem, qty int) orderResponse {
	t.Helper()
	fillCart(t, db, user, item, qty)
	w := doRequest(t, r, http.MethodPost, "/orders", tokenFor(t, user), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestCheckoutScenario(t *testing.T) {
	r, db := setupRouter(t)
	user := createUser(t, db, "alice")
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")
	salad := createMenuItem(t, db, "Greek Salad", "5.00")

	fillCart(t, db, user, pasta, 2)
	fillCart(t, db, user, salad, 1)

	w := doRequest(t, r, http.MethodPost, "/orders", tokenFor(t, user), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Total.Equal(decimal.RequireFromString("25.00")), "total = %s", resp.Total)
	assert.Equal(t, 0, resp.Status.Code)
	assert.Equal(t, "Out for delivery", resp.Status.Label)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Nil(t, resp.DeliveryCrew)
	require.Len(t, resp.Items, 2)

	// Item totals are exact and sum to the order total
	sum := decimal.Zero
	for _, item := range resp.Items {
		assert.True(t, item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
		sum = sum.Add(item.TotalPrice)
	}
	assert.True(t, sum.Equal(resp.Total))

	// Cart is drained
	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCheckoutUsesSnapshotNotLivePrice(t *testing.T) {
	r, db := setupRouter(t)
	user := createUser(t, db, "alice")
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	fillCart(t, db, user, pasta, 2)
	// Catalog price change after add must not affect the order
	require.NoError(t, db.Model(pasta).Update("price", decimal.RequireFromString("99.99")).Error)

	w := doRequest(t, r, http.MethodPost, "/orders", tokenFor(t, user), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("20.00")), "total = %s", resp.Total)
}

func TestCheckoutEmptyCart(t *testing.T) {
	r, db := setupRouter(t)
	user := createUser(t, db, "alice")

	w := doRequest(t, r, http.MethodPost, "/orders", tokenFor(t, user), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "no order may be created from an empty cart")
}

func TestCheckoutTwiceSecondFails(t *testing.T) {
	r, db := setupRouter(t)
	user := createUser(t, db, "alice")
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")
	fillCart(t, db, user, pasta, 1)
	token := tokenFor(t, user)

	w := doRequest(t, r, http.MethodPost, "/orders", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// The cart was consumed exactly once
	w = doRequest(t, r, http.MethodPost, "/orders", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckoutForbiddenForElevatedRoles(t *testing.T) {
	r, db := setupRouter(t)
	manager := createUser(t, db, "boss", models.GroupManager)
	crew := createUser(t, db, "rider", models.GroupDeliveryCrew)

	for _, u := range []*models.User{manager, crew} {
		w := doRequest(t, r, http.MethodPost, "/orders", tokenFor(t, u), nil)
		assert.Equal(t, http.StatusForbidden, w.Code, u.Username)
	}
}

func TestListOrdersRoleScoped(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	manager := createUser(t, db, "boss", models.GroupManager)
	crew := createUser(t, db, "rider", models.GroupDeliveryCrew)
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	aliceOrder := placeOrderFor(t, r, db, alice, pasta, 1)
	placeOrderFor(t, r, db, bob, pasta, 2)

	// Assign crew to alice's order
	w := doRequest(t, r, http.MethodPatch, "/orders/"+itoa(aliceOrder.ID), tokenFor(t, manager),
		gin.H{"delivery_crew": crew.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list orderListResponse

	// Customer sees only their own
	w = doRequest(t, r, http.MethodGet, "/orders", tokenFor(t, alice), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Results, 1)
	assert.Equal(t, "alice", list.Results[0].User.Username)

	// Delivery crew sees only assigned orders
	w = doRequest(t, r, http.MethodGet, "/orders", tokenFor(t, crew), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Results, 1)
	assert.Equal(t, aliceOrder.ID, list.Results[0].ID)

	// Manager sees everything
	w = doRequest(t, r, http.MethodGet, "/orders", tokenFor(t, manager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 2, list.Count)
	assert.Len(t, list.Results, 2)
}

func TestListOrdersFiltersAndSearch(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	manager := createUser(t, db, "boss", models.GroupManager)
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")
	salad := createMenuItem(t, db, "Greek Salad", "5.00")

	placeOrderFor(t, r, db, alice, pasta, 3) // total 30.00
	placeOrderFor(t, r, db, bob, salad, 1)   // total 5.00
	token := tokenFor(t, manager)

	var list orderListResponse

	w := doRequest(t, r, http.MethodGet, "/orders?total_min=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Results, 1)
	assert.Equal(t, "alice", list.Results[0].User.Username)

	w = doRequest(t, r, http.MethodGet, "/orders?search=bob", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Results, 1)
	assert.Equal(t, "bob", list.Results[0].User.Username)

	w = doRequest(t, r, http.MethodGet, "/orders?user="+itoa(bob.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Results, 1)
	assert.Equal(t, "bob", list.Results[0].User.Username)

	w = doRequest(t, r, http.MethodGet, "/orders?ordering=total", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Results, 2)
	assert.True(t, list.Results[0].Total.LessThan(list.Results[1].Total))
}

func TestListOrdersPagination(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	manager := createUser(t, db, "boss", models.GroupManager)
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	for i := 0; i < 3; i++ {
		placeOrderFor(t, r, db, alice, pasta, 1)
	}

	var list orderListResponse
	w := doRequest(t, r, http.MethodGet, "/orders?page=2&per_page=2", tokenFor(t, manager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 3, list.Count)
	assert.Equal(t, 2, list.Page)
	assert.Len(t, list.Results, 1)
}

func TestGetOrderHiddenFromOtherCustomers(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	order := placeOrderFor(t, r, db, alice, pasta, 1)

	// The owner can fetch it
	w := doRequest(t, r, http.MethodGet, "/orders/"+itoa(order.ID), tokenFor(t, alice), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Another customer gets a 404, not a 403
	w = doRequest(t, r, http.MethodGet, "/orders/"+itoa(order.ID), tokenFor(t, mallory), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// And never sees it in a listing
	var list orderListResponse
	w = doRequest(t, r, http.MethodGet, "/orders", tokenFor(t, mallory), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Results)
}

func TestOwnerKeepsVisibilityAfterJoiningCrew(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	order := placeOrderFor(t, r, db, alice, pasta, 1)

	// Alice joins the delivery crew after placing the order
	var g models.Group
	require.NoError(t, db.Where(models.Group{Name: models.GroupDeliveryCrew}).FirstOrCreate(&g).Error)
	require.NoError(t, db.Model(alice).Association("Groups").Append(&g))

	// She still sees the order she placed, assigned to her or not
	w := doRequest(t, r, http.MethodGet, "/orders/"+itoa(order.ID), tokenFor(t, alice), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDeliveryCrewPatchRules(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	manager := createUser(t, db, "boss", models.GroupManager)
	crew := createUser(t, db, "rider", models.GroupDeliveryCrew)
	otherCrew := createUser(t, db, "rider2", models.GroupDeliveryCrew)
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	order := placeOrderFor(t, r, db, alice, pasta, 1)

	// Unassigned crew is rejected even for a no-op patch
	w := doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), tokenFor(t, crew), gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Manager assigns the crew
	w = doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), tokenFor(t, manager),
		gin.H{"delivery_crew": crew.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Assigned crew can mark it delivered; extra fields are ignored, not rejected
	w = doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), tokenFor(t, crew),
		gin.H{"status": 1, "total": "0.01", "delivery_crew": otherCrew.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Status.Code)
	assert.Equal(t, "Delivered", resp.Status.Label)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("10.00")), "crew must not change total")
	require.NotNil(t, resp.DeliveryCrew)
	assert.Equal(t, "rider", resp.DeliveryCrew.Username, "crew must not reassign the order")

	// A different crew member still gets a 403
	w = doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), tokenFor(t, otherCrew),
		gin.H{"status": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCustomerCannotPatchOrder(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	order := placeOrderFor(t, r, db, alice, pasta, 1)

	w := doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), tokenFor(t, alice),
		gin.H{"status": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestManagerPatchIsUnconstrained(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	manager := createUser(t, db, "boss", models.GroupManager)
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	order := placeOrderFor(t, r, db, alice, pasta, 1)
	token := tokenFor(t, manager)

	// Deliver, then move the status backward again: no transition guard
	w := doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), token, gin.H{"status": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), token,
		gin.H{"status": 0, "total": "99.00"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Status.Code)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("99.00")))

	// But an out-of-range status is still rejected
	w = doRequest(t, r, http.MethodPatch, "/orders/"+itoa(order.ID), token, gin.H{"status": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	r, db := setupRouter(t)
	alice := createUser(t, db, "alice")
	manager := createUser(t, db, "boss", models.GroupManager)
	pasta := createMenuItem(t, db, "Lemon Pasta", "10.00")

	order := placeOrderFor(t, r, db, alice, pasta, 1)

	// Customers cannot delete, not even their own order
	w := doRequest(t, r, http.MethodDelete, "/orders/"+itoa(order.ID), tokenFor(t, alice), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/orders/"+itoa(order.ID), tokenFor(t, manager), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	assert.EqualValues(t, 0, items, "order items must be cascade-deleted")

	w = doRequest(t, r, http.MethodDelete, "/orders/"+itoa(order.ID), tokenFor(t, manager), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdersRequiresAuthentication(t *testing.T) {
	r, _ := setupRouter(t)
	w := doRequest(t, r, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
