package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/middleware"
	"github.com/javiersgm/bistro-api/models"
	"github.com/javiersgm/bistro-api/policy"
)

var errEmptyCart = errors.New("cart is empty")

// -------- Request / Response Structs --------

// ManagerOrderPatch is the manager-facing partial update: any of the three
// fields may be present.
type ManagerOrderPatch struct {
	Status       *int             `json:"status"`
	DeliveryCrew *uint            `json:"delivery_crew"`
	Total        *decimal.Decimal `json:"total"`
}

// CrewOrderPatch is the delivery-crew-facing partial update. Only status is
// read; any other field in the payload is silently ignored.
type CrewOrderPatch struct {
	Status *int `json:"status"`
}

type userRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type statusView struct {
	Label string `json:"label"`
	Code  int    `json:"code"`
}

type orderItemView struct {
	MenuItem   menuItemRef     `json:"menu_item"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type menuItemRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type orderView struct {
	ID           uint            `json:"id"`
	User         userRef         `json:"user"`
	DeliveryCrew *userRef        `json:"delivery_crew"`
	Status       statusView      `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Date         time.Time       `json:"date"`
	Items        []orderItemView `json:"items"`
}

func viewOf(o *models.Order) orderView {
	v := orderView{
		ID:     o.ID,
		User:   userRef{ID: o.User.ID, Username: o.User.Username},
		Status: statusView{Label: o.Status.Label(), Code: int(o.Status)},
		Total:  o.Total,
		Date:   o.Date,
		Items:  make([]orderItemView, 0, len(o.Items)),
	}
	if o.DeliveryCrew != nil {
		v.DeliveryCrew = &userRef{ID: o.DeliveryCrew.ID, Username: o.DeliveryCrew.Username}
	}
	for i := range o.Items {
		item := &o.Items[i]
		v.Items = append(v.Items, orderItemView{
			MenuItem:   menuItemRef{ID: item.MenuItemID, Name: item.MenuItem.Name},
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice(),
		})
	}
	return v
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("DeliveryCrew").Preload("Items").Preload("Items.MenuItem")
}

// -------- Core Logic --------

// placeOrder drains the user's cart into a new order inside one transaction.
// The cart rows are locked FOR UPDATE so two concurrent checkouts for the
// same user serialize: the loser re-reads an empty cart and gets errEmptyCart.
func placeOrder(db *gorm.DB, user *models.User) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := models.LockForUpdate(tx).
			Where("user_id = ?", user.ID).
			Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return errEmptyCart
		}

		order = models.Order{
			UserID: user.ID,
			Status: models.OrderStatusOutForDelivery,
			Total:  decimal.Zero,
			Date:   time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			// Quantity and unit price are copied verbatim from the cart
			// snapshot; the live catalog price is never consulted here.
			orderItems = append(orderItems, models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: ci.MenuItemID,
				Quantity:   ci.Quantity,
				UnitPrice:  ci.UnitPrice,
			})
			total = total.Add(ci.TotalPrice())
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}

		if err := tx.Model(&order).Update("total", total).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// POST /orders
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if !policy.IsCustomer(middleware.CurrentRole(c)) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Only customers can create orders."})
			return
		}

		order, err := placeOrder(db, user)
		if err != nil {
			if errors.Is(err, errEmptyCart) {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "Cart is empty."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}

		var created models.Order
		if err := preloadOrder(db).First(&created, order.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}
		c.JSON(http.StatusCreated, viewOf(&created))
	}
}

// GET /orders
//
// Role-scoped listing: managers see all orders, delivery crew only their
// assigned ones, customers only their own. The scope is applied before any
// filter, so out-of-scope orders never appear regardless of query params.
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		role := middleware.CurrentRole(c)

		scoped := func(q *gorm.DB) *gorm.DB {
			q = q.Model(&models.Order{})
			switch {
			case policy.IsManagerOrSuperuser(role):
				// no scoping
			case role == models.RoleDeliveryCrew:
				q = q.Where("orders.delivery_crew_id = ?", user.ID)
			default:
				q = q.Where("orders.user_id = ?", user.ID)
			}
			return applyOrderFilters(c, q)
		}

		var count int64
		if err := scoped(db).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
			return
		}

		q := scoped(preloadOrder(db)).Order(orderingClause(c.Query("ordering")))

		page, perPage := pagination(c)
		var orders []models.Order
		if err := q.Limit(perPage).Offset((page - 1) * perPage).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		results := make([]orderView, 0, len(orders))
		for i := range orders {
			results = append(results, viewOf(&orders[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"count":    count,
			"page":     page,
			"per_page": perPage,
			"results":  results,
		})
	}
}

// GET /orders/:id
//
// Unauthorized viewers get a 404, not a 403: order existence is not leaked.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		role := middleware.CurrentRole(c)

		var order models.Order
		if err := preloadOrder(db).First(&order, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		if !policy.CanViewOrder(role, &order, user.ID) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		c.JSON(http.StatusOK, viewOf(&order))
	}
}

// PATCH /orders/:id (PUT is routed here too)
func UpdateOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		role := middleware.CurrentRole(c)

		var order models.Order
		if err := preloadOrder(db).First(&order, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}

		switch {
		case policy.IsManagerOrSuperuser(role):
			if !applyManagerPatch(c, db, &order) {
				return
			}
		case role == models.RoleDeliveryCrew:
			// The assignment check comes before reading the payload: an
			// unassigned crew member is rejected even for a no-op patch.
			if !policy.IsAssignedDeliveryCrew(role, &order, user.ID) {
				c.JSON(http.StatusForbidden, gin.H{"detail": "This order is not assigned to you."})
				return
			}
			if !applyCrewPatch(c, db, &order) {
				return
			}
		default:
			c.JSON(http.StatusForbidden, gin.H{"detail": "Forbidden"})
			return
		}

		var updated models.Order
		if err := preloadOrder(db).First(&updated, order.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}
		c.JSON(http.StatusOK, viewOf(&updated))
	}
}

// DELETE /orders/:id
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := middleware.CurrentRole(c)

		var order models.Order
		if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		if !policy.IsManagerOrSuperuser(role) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Forbidden"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// -------- Patch helpers --------

// applyManagerPatch writes the manager-supplied fields. Status transitions
// are deliberately unconstrained here: a manager may move a delivered order
// back out for delivery or reassign its crew. Reports false after writing an
// error response.
func applyManagerPatch(c *gin.Context, db *gorm.DB, order *models.Order) bool {
	var patch ManagerOrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return false
	}

	updates := map[string]interface{}{}
	if patch.Status != nil {
		if !models.OrderStatus(*patch.Status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return false
		}
		updates["status"] = *patch.Status
	}
	if patch.DeliveryCrew != nil {
		var crew models.User
		if err := db.First(&crew, *patch.DeliveryCrew).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery crew user not found"})
			return false
		}
		updates["delivery_crew_id"] = *patch.DeliveryCrew
	}
	if patch.Total != nil {
		updates["total"] = *patch.Total
	}
	if len(updates) == 0 {
		return true
	}
	if err := db.Model(order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return false
	}
	return true
}

// applyCrewPatch writes only the status field; everything else in the
// payload is ignored rather than rejected.
func applyCrewPatch(c *gin.Context, db *gorm.DB, order *models.Order) bool {
	var patch CrewOrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return false
	}
	if patch.Status == nil {
		return true
	}
	if !models.OrderStatus(*patch.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return false
	}
	if err := db.Model(order).Update("status", *patch.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return false
	}
	return true
}

// -------- Query helpers --------

func applyOrderFilters(c *gin.Context, q *gorm.DB) *gorm.DB {
	if v := c.Query("status"); v != "" {
		q = q.Where("orders.status = ?", v)
	}
	if v := c.Query("user"); v != "" {
		q = q.Where("orders.user_id = ?", v)
	}
	if v := c.Query("delivery_crew"); v != "" {
		q = q.Where("orders.delivery_crew_id = ?", v)
	}
	if v := c.Query("total_min"); v != "" {
		q = q.Where("orders.total >= ?", v)
	}
	if v := c.Query("total_max"); v != "" {
		q = q.Where("orders.total <= ?", v)
	}
	if t, ok := parseTime(c.Query("date_min")); ok {
		q = q.Where("orders.date >= ?", t)
	}
	if t, ok := parseTime(c.Query("date_max")); ok {
		q = q.Where("orders.date <= ?", t)
	}
	if v := c.Query("search"); v != "" {
		pattern := "%" + v + "%"
		q = q.Select("orders.*").
			Joins("LEFT JOIN users AS owners ON owners.id = orders.user_id").
			Joins("LEFT JOIN users AS crews ON crews.id = orders.delivery_crew_id").
			Where("owners.username LIKE ? OR crews.username LIKE ?", pattern, pattern)
	}
	return q
}

func parseTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// orderingClause whitelists the sortable columns. Default is most recent
// first.
func orderingClause(ordering string) string {
	desc := false
	if len(ordering) > 0 && ordering[0] == '-' {
		desc = true
		ordering = ordering[1:]
	}
	switch ordering {
	case "total", "date", "status":
	default:
		return "orders.date DESC"
	}
	col := "orders." + ordering
	if desc {
		col += " DESC"
	}
	return col
}

func pagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
