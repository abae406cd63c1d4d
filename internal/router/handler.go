package router

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cloudonauts/storefront/pkg/backend"
	"github.com/cloudonauts/storefront/pkg/cart"
	"github.com/cloudonauts/storefront/pkg/global"
	"github.com/cloudonauts/storefront/pkg/identity"
	"github.com/cloudonauts/storefront/pkg/models"
	"github.com/cloudonauts/storefront/pkg/session"
	"github.com/cloudonauts/storefront/pkg/storage"
)

func (r *Router) HealthCheck(c *gin.Context) {
	if _, _, err := r.slots.Get(c.Request.Context(), storage.KeyAllProducts); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Storage unavailable", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK"}))
}

// gridItem is a catalog product joined with its in-cart quantity so the
// grid can render cart controls without a second request.
type gridItem struct {
	models.Product
	InCart   bool `json:"inCart"`
	Quantity int  `json:"quantity"`
}

// ProductGrid is the catalog listing view. Mounting it is the one place
// the catalog cache refreshes; a failed refresh aborts the view and
// leaves the previous cache in place.
func (r *Router) ProductGrid(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := r.catalog.Refresh(ctx)
	if err != nil {
		log.Printf("Error refreshing catalog: %v", err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to load products", nil))
		return
	}

	items := r.cart.Read(ctx)
	grid := make([]gridItem, 0, len(products))
	for _, product := range products {
		qty := items[product.Key()]
		grid = append(grid, gridItem{Product: product, InCart: qty > 0, Quantity: qty})
	}
	c.JSON(http.StatusOK, global.SuccessResponse(grid))
}

// ProductDetail fetches one product straight from the remote API; it does
// not touch the catalog cache.
func (r *Router) ProductDetail(c *gin.Context) {
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product id", []global.ValidationError{
			{Field: "pid", Message: "product id must be an integer", Code: "invalid_format"},
		}))
		return
	}

	ctx := c.Request.Context()
	product, err := r.api.GetProduct(ctx, pid)
	if err != nil {
		log.Printf("Error fetching product %d: %v", pid, err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Product not found", nil))
		return
	}

	qty := r.cart.Read(ctx)[product.Key()]
	c.JSON(http.StatusOK, global.SuccessResponse(gridItem{Product: product, InCart: qty > 0, Quantity: qty}))
}

// cartState is the re-derived view every cart mutation responds with.
type cartState struct {
	Items        cart.Items     `json:"items"`
	Count        int            `json:"count"`
	Breakdown    cart.Breakdown `json:"breakdown"`
	DisplayTotal string         `json:"displayTotal"`
}

func (r *Router) deriveCartState(ctx context.Context) cartState {
	items := r.cart.Read(ctx)
	breakdown := cart.PriceBreakdown(items, r.catalog.All(ctx))
	return cartState{
		Items:        items,
		Count:        cart.TotalItemCount(items),
		Breakdown:    breakdown,
		DisplayTotal: breakdown.DisplayTotal(),
	}
}

// CartPage renders the persisted cart joined against the cached catalog.
// Entries whose product is missing from the cache stay in the raw items
// and the count, but get no priced line.
func (r *Router) CartPage(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(r.deriveCartState(c.Request.Context())))
}

func (r *Router) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request", []global.ValidationError{
			{Field: "pid", Message: "pid is required", Code: "required"},
		}))
		return
	}

	ctx := c.Request.Context()
	name := req.PID
	if product, ok := r.catalog.Get(ctx, req.PID); ok {
		if !product.InStock() {
			c.JSON(http.StatusConflict, global.ErrorResponse("Out of stock", nil))
			return
		}
		name = product.ProductName
	}

	added, err := r.cart.Add(ctx, req.PID)
	if err != nil {
		log.Printf("Error adding %s to cart: %v", req.PID, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart", nil))
		return
	}

	state := r.deriveCartState(ctx)
	if !added {
		c.JSON(http.StatusOK, global.MessageResponse(state, name+" is already in your cart"))
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse(state, name+" added to cart"))
}

// IncrementCartItem bumps a quantity by one, bounded by the product's
// inventory as the catalog last saw it.
func (r *Router) IncrementCartItem(c *gin.Context) {
	pid := c.Param("pid")
	ctx := c.Request.Context()

	product, ok := r.catalog.Get(ctx, pid)
	if !ok {
		// Not in the cached listing; ask the remote API so the detail
		// view can still adjust quantities.
		id, err := strconv.Atoi(pid)
		if err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product id", nil))
			return
		}
		product, err = r.api.GetProduct(ctx, id)
		if err != nil {
			log.Printf("Error fetching product %s for increment: %v", pid, err)
			c.JSON(http.StatusBadGateway, global.ErrorResponse("Product unavailable", nil))
			return
		}
	}

	err := r.cart.Increment(ctx, pid, product.Inventory)
	if errors.Is(err, cart.ErrInventoryLimit) {
		c.JSON(http.StatusConflict, global.ErrorResponse("No more stock available", nil))
		return
	}
	if err != nil {
		log.Printf("Error incrementing %s: %v", pid, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse(r.deriveCartState(ctx), product.ProductName+" quantity updated"))
}

func (r *Router) DecrementCartItem(c *gin.Context) {
	pid := c.Param("pid")
	ctx := c.Request.Context()

	if err := r.cart.Decrement(ctx, pid); err != nil {
		log.Printf("Error decrementing %s: %v", pid, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(r.deriveCartState(ctx)))
}

func (r *Router) RemoveFromCart(c *gin.Context) {
	pid := c.Param("pid")
	ctx := c.Request.Context()

	if err := r.cart.Remove(ctx, pid); err != nil {
		log.Printf("Error removing %s: %v", pid, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(r.deriveCartState(ctx)))
}

// HeaderBadge serves the header's session summary: who is logged in and
// the derived cart item count.
func (r *Router) HeaderBadge(c *gin.Context) {
	m := session.Current(c)
	response := gin.H{"cartItemCount": m.CartCount()}
	if profile, ok := m.Current(); ok {
		response["user"] = profile
	} else {
		response["user"] = nil
	}
	c.JSON(http.StatusOK, global.SuccessResponse(response))
}

// PlaceOrder submits the whole cart. On success the cart is cleared and
// the order id returned for the confirmation view.
func (r *Router) PlaceOrder(c *gin.Context) {
	m := session.Current(c)
	profile, _ := m.Current()
	ctx := c.Request.Context()

	items := r.cart.Read(ctx)
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Your cart is empty", nil))
		return
	}

	orderItems := make([]backend.OrderItem, 0, len(items))
	for pid, qty := range items {
		id, err := strconv.Atoi(pid)
		if err != nil {
			log.Printf("Warning: skipping cart entry with non-numeric pid %q", pid)
			continue
		}
		orderItems = append(orderItems, backend.OrderItem{PID: id, Quantity: qty})
	}

	orderID, err := r.api.PlaceOrder(ctx, profile.Sub, orderItems)
	if err != nil {
		log.Printf("Error placing order for %s: %v", profile.Sub, err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse(err.Error(), nil))
		return
	}

	if err := r.cart.Clear(ctx); err != nil {
		log.Printf("Warning: order %d placed but cart clear failed: %v", orderID, err)
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"order_id": orderID}))
}

type orderView struct {
	OrderID  int                `json:"order_id"`
	Products []models.OrderLine `json:"products"`
	Total    string             `json:"total"`
}

// OrderHistory lists the user's orders, newest first.
func (r *Router) OrderHistory(c *gin.Context) {
	m := session.Current(c)
	profile, _ := m.Current()

	orders, err := r.api.UserOrders(c.Request.Context(), profile.Sub)
	if err != nil {
		log.Printf("Error fetching orders for %s: %v", profile.Sub, err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to fetch orders", nil))
		return
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID > orders[j].OrderID })
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView{
			OrderID:  order.OrderID,
			Products: order.Products,
			Total:    order.Total().StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, global.SuccessResponse(views))
}

// OrderConfirmation renders a single just-placed order. The order API has
// no single-order endpoint, so this reads the user's orders and picks one.
func (r *Router) OrderConfirmation(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order id", nil))
		return
	}

	m := session.Current(c)
	profile, _ := m.Current()
	orders, err := r.api.UserOrders(c.Request.Context(), profile.Sub)
	if err != nil {
		log.Printf("Error fetching order %d for %s: %v", orderID, profile.Sub, err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to fetch order", nil))
		return
	}

	for _, order := range orders {
		if order.OrderID == orderID {
			c.JSON(http.StatusOK, global.SuccessResponse(orderView{
				OrderID:  order.OrderID,
				Products: order.Products,
				Total:    order.Total().StringFixed(2),
			}))
			return
		}
	}
	c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
}

func (r *Router) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid signup request", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	if err := r.idp.SignUp(c.Request.Context(), req.Email, req.Password, req.Name); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, identity.ErrUserExists) {
			status = http.StatusConflict
		}
		c.JSON(status, global.ErrorResponse(identityMessage(err), nil))
		return
	}
	c.JSON(http.StatusCreated, global.MessageResponse(nil, "Sign up successful! Please check your email to confirm your account."))
}

func (r *Router) ConfirmSignUp(c *gin.Context) {
	var req models.ConfirmSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid confirmation request", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	if err := r.idp.ConfirmSignUp(c.Request.Context(), req.Email, req.Code); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, identity.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, global.ErrorResponse(identityMessage(err), nil))
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse(nil, "Email confirmed successfully! You can now log in."))
}

func (r *Router) ResendCode(c *gin.Context) {
	var req models.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	if err := r.idp.ResendCode(c.Request.Context(), req.Email); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, identity.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, global.ErrorResponse(identityMessage(err), nil))
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse(nil, "A new confirmation code has been sent"))
}

func (r *Router) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid login request", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	ctx := c.Request.Context()
	profile, tokens, err := r.idp.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse(identityMessage(err), nil))
		return
	}

	if err := session.Current(c).Login(ctx, profile, tokens); err != nil {
		log.Printf("Error persisting session for %s: %v", profile.Sub, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to start session", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(profile))
}

func (r *Router) Logout(c *gin.Context) {
	if err := session.Current(c).Logout(c.Request.Context()); err != nil {
		log.Printf("Error during logout: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to log out", nil))
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse(nil, "You have logged out successfully"))
}

// AddProduct validates the new-product form field by field and only then
// forwards it to the remote API. A validation failure blocks submission
// outright; no network call is issued.
func (r *Router) AddProduct(c *gin.Context) {
	form := models.AddProductRequest{
		Category:    strings.TrimSpace(c.PostForm("category")),
		Gender:      strings.TrimSpace(c.PostForm("gender")),
		ProductName: strings.TrimSpace(c.PostForm("productName")),
		Size:        strings.TrimSpace(c.PostForm("size")),
		Price:       strings.TrimSpace(c.PostForm("price")),
		Count:       strings.TrimSpace(c.PostForm("count")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}

	fieldErrors := validateAddProduct(form)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		fieldErrors = append(fieldErrors, global.ValidationError{Field: "image", Message: "Product image is required", Code: "required"})
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Please fix the errors in the form", fieldErrors))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Failed to read product image", nil))
		return
	}
	defer file.Close()

	imageURL, err := r.api.AddProduct(c.Request.Context(), form, file, fileHeader.Filename)
	if err != nil {
		log.Printf("Error adding product %q: %v", form.ProductName, err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse(err.Error(), nil))
		return
	}
	c.JSON(http.StatusCreated, global.MessageResponse(gin.H{"imageUrl": imageURL}, "Product added successfully"))
}

func validateAddProduct(form models.AddProductRequest) []global.ValidationError {
	var errs []global.ValidationError
	required := []struct {
		field, value, message string
	}{
		{"category", form.Category, "Category is required"},
		{"gender", form.Gender, "Gender is required"},
		{"productName", form.ProductName, "Product name is required"},
		{"size", form.Size, "Size is required"},
		{"description", form.Description, "Description is required"},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, global.ValidationError{Field: r.field, Message: r.message, Code: "required"})
		}
	}

	if form.Price == "" {
		errs = append(errs, global.ValidationError{Field: "price", Message: "Price is required", Code: "required"})
	} else if price, err := strconv.ParseFloat(form.Price, 64); err != nil || price <= 0 {
		errs = append(errs, global.ValidationError{Field: "price", Message: "Price must be a positive number", Code: "invalid"})
	}

	if form.Count == "" {
		errs = append(errs, global.ValidationError{Field: "count", Message: "Count is required", Code: "required"})
	} else if count, err := strconv.Atoi(form.Count); err != nil || count <= 0 {
		errs = append(errs, global.ValidationError{Field: "count", Message: "Count must be a positive integer", Code: "invalid"})
	}
	return errs
}

// identityMessage strips the package prefix so provider errors read as
// user-facing messages.
func identityMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "identity: ")
}
