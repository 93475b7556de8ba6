package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"bakereserve-storefront/internal/domain"
	cartsvc "bakereserve-storefront/internal/service/cart"
	catalogsvc "bakereserve-storefront/internal/service/catalog"
	checkoutsvc "bakereserve-storefront/internal/service/checkout"
	ordersvc "bakereserve-storefront/internal/service/order"
	"bakereserve-storefront/internal/service/report"
	sessionsvc "bakereserve-storefront/internal/service/session"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	deps Deps
}

// bindJSON decodes the body, answering 400 on malformed input.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, domain.Invalid("", "invalid request body"))
		return false
	}
	return true
}

func (h *handlers) setSessionCookie(c *gin.Context, sess *domain.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.ID, maxAge, "/", "", h.deps.CookieSecure, true)
}

type sessionResponse struct {
	*domain.Session
	SessionID string `json:"sessionId"`
	Redirect  string `json:"redirect"`
}

// landingFor mirrors where each role lands after signing in.
func landingFor(sess *domain.Session) string {
	if sess.IsAdmin() {
		return "/admin"
	}
	return "/home"
}

func (h *handlers) login(c *gin.Context) {
	var in sessionsvc.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	sess, err := h.deps.Sessions.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, sess)
	respondJSON(c, http.StatusOK, "logged in", sessionResponse{Session: sess, SessionID: sess.ID, Redirect: landingFor(sess)})
}

func (h *handlers) register(c *gin.Context) {
	var in sessionsvc.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	sess, err := h.deps.Sessions.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, sess)
	respondJSON(c, http.StatusCreated, "registered", sessionResponse{Session: sess, SessionID: sess.ID, Redirect: landingFor(sess)})
}

func (h *handlers) logout(c *gin.Context) {
	if id := sessionID(c); id != "" {
		if err := h.deps.Sessions.Logout(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", h.deps.CookieSecure, true)
	respondJSON(c, http.StatusOK, "logged out", gin.H{"redirect": AuthPath})
}

func (h *handlers) me(c *gin.Context) {
	respondJSON(c, http.StatusOK, "ok", currentSession(c))
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Catalog.List(c.Request.Context(), domain.Category(c.Query("category")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", products)
}

func (h *handlers) getProduct(c *gin.Context) {
	product, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", product)
}

func (h *handlers) viewCart(c *gin.Context) {
	view, err := h.deps.Cart.View(c.Request.Context(), currentSession(c))
	h.respondCart(c, view, err)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var in cartsvc.AddInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.deps.Cart.AddItem(c.Request.Context(), currentSession(c), in)
	h.respondCart(c, view, err)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var in quantityRequest
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.deps.Cart.UpdateQuantity(c.Request.Context(), currentSession(c), c.Param("id"), in.Quantity)
	h.respondCart(c, view, err)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	view, err := h.deps.Cart.RemoveItem(c.Request.Context(), currentSession(c), c.Param("id"), confirmed)
	h.respondCart(c, view, err)
}

func (h *handlers) toggleCartItem(c *gin.Context) {
	view, err := h.deps.Cart.ToggleSelection(c.Request.Context(), currentSession(c), c.Param("id"))
	h.respondCart(c, view, err)
}

type selectAllRequest struct {
	Selected bool `json:"selected"`
}

func (h *handlers) selectAll(c *gin.Context) {
	var in selectAllRequest
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.deps.Cart.SelectAll(c.Request.Context(), currentSession(c), in.Selected)
	h.respondCart(c, view, err)
}

func (h *handlers) respondCart(c *gin.Context, view *cartsvc.View, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	message := "ok"
	if view.Empty {
		message = "Your cart is empty"
	}
	respondJSON(c, http.StatusOK, message, view)
}

func (h *handlers) checkout(c *gin.Context) {
	var in checkoutsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.deps.Checkout.Checkout(c.Request.Context(), currentSession(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, "order placed", res)
}

func (h *handlers) paymentStatus(c *gin.Context) {
	intentID := c.Query("payment_intent_id")
	if intentID == "" {
		intentID = c.Query("paymentIntentId")
	}
	ps, err := h.deps.Checkout.ReturnFromPayment(c.Request.Context(), currentSession(c), c.Query("status"), intentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", ps)
}

// orderView adds the derived fields the order screens display.
type orderView struct {
	domain.Order
	Type    domain.OrderType     `json:"type"`
	Class   domain.OrderClass    `json:"class"`
	Actions []domain.OrderStatus `json:"actions"`
}

func toOrderViews(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView{Order: o, Type: o.Type(), Class: o.Class(), Actions: ordersvc.Actions(o)})
	}
	return out
}

func (h *handlers) myOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListMine(c.Request.Context(), currentSession(c), c.Query("tab"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", toOrderViews(orders))
}

func (h *handlers) adminOrders(c *gin.Context) {
	board, err := h.deps.Orders.ListAll(c.Request.Context(), currentSession(c), ordersvc.Filter{
		StatusTab: c.Query("status"),
		Type:      c.Query("type"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", gin.H{
		"orders": toOrderViews(board.Orders),
		"counts": board.Counts,
		"tab":    board.Tab,
		"type":   board.Type,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) transitionOrder(c *gin.Context) {
	var in statusRequest
	if !bindJSON(c, &in) {
		return
	}
	order, err := h.deps.Orders.Transition(c.Request.Context(), currentSession(c), c.Param("id"), domain.OrderStatus(in.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "order "+string(order.Status), toOrderViews([]domain.Order{*order})[0])
}

func (h *handlers) reportQuery(c *gin.Context) (report.Query, bool) {
	q, err := report.ParseQuery(c.Query("period"), c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return q, false
	}
	return q, true
}

func (h *handlers) stats(c *gin.Context) {
	q, ok := h.reportQuery(c)
	if !ok {
		return
	}
	st, err := h.deps.Reports.Stats(c.Request.Context(), currentSession(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", st)
}

func (h *handlers) dashboard(c *gin.Context) {
	q, ok := h.reportQuery(c)
	if !ok {
		return
	}
	dash, err := h.deps.Reports.Dashboard(c.Request.Context(), currentSession(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", dash)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in catalogsvc.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	product, err := h.deps.Catalog.Create(c.Request.Context(), currentSession(c).Token, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, "product created", product)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in catalogsvc.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	product, err := h.deps.Catalog.Update(c.Request.Context(), currentSession(c).Token, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "product updated", product)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.Delete(c.Request.Context(), currentSession(c).Token, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "product deleted", nil)
}

type stockRequest struct {
	Delta int `json:"delta"`
}

func (h *handlers) adjustStock(c *gin.Context) {
	var in stockRequest
	if !bindJSON(c, &in) {
		return
	}
	product, err := h.deps.Catalog.AdjustStock(c.Request.Context(), currentSession(c).Token, c.Param("id"), in.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "stock updated", product)
}

func (h *handlers) paymentAttempts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	attempts, err := h.deps.Checkout.Attempts(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, "ok", attempts)
}
