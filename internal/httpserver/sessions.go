package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/service/checkout"
	"artpay-checkout/internal/session"
)

type createSessionRequest struct {
	UserID int64 `json:"userId"`
}

// sessionResponse is the snapshot the storefront renders from.
type sessionResponse struct {
	ID            string                `json:"id"`
	UserID        int64                 `json:"userId"`
	Phase         session.Phase         `json:"phase"`
	Loading       bool                  `json:"loading"`
	Order         *domain.Order         `json:"order,omitempty"`
	Profile       *domain.UserProfile   `json:"profile,omitempty"`
	Vendor        *domain.Vendor        `json:"vendor,omitempty"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
	Intent        *domain.PaymentIntent `json:"intent,omitempty"`
	Flags         session.Flags         `json:"flags"`
}

type checkoutResponse struct {
	Action   checkout.Action       `json:"action"`
	Location string                `json:"location,omitempty"`
	Step     string                `json:"step"`
	Order    *domain.Order         `json:"order,omitempty"`
	Intent   *domain.PaymentIntent `json:"intent,omitempty"`
	Session  sessionResponse       `json:"session"`
}

func toSessionResponse(st *session.State) sessionResponse {
	return sessionResponse{
		ID:            st.ID,
		UserID:        st.UserID,
		Phase:         st.Phase,
		Loading:       st.Loading(),
		Order:         st.Order,
		Profile:       st.Profile,
		Vendor:        st.Vendor,
		PaymentMethod: st.PaymentMethod,
		Intent:        st.Intent,
		Flags:         st.Flags,
	}
}

func (h *handlers) createSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "InvalidJsonInput", "Request body is not valid JSON.")
			return
		}
	}
	if req.UserID < 0 {
		abortWithError(c, http.StatusBadRequest, "InvalidInput", "userId must not be negative.")
		return
	}
	st, err := h.deps.Sessions.Create(c.Request.Context(), req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(st))
}

func (h *handlers) getSession(c *gin.Context) {
	st, err := h.deps.Sessions.Get(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(st))
}

func (h *handlers) runCheckout(c *gin.Context) {
	mode, err := domain.ParsePurchaseMode(c.Query("mode"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	params := checkout.Params{
		OrderRef:       strings.TrimSpace(c.Query("order")),
		PaymentIntent:  strings.TrimSpace(c.Query("payment_intent")),
		RedirectStatus: domain.RedirectStatus(strings.TrimSpace(c.Query("redirect_status"))),
		Mode:           mode,
		PaymentMethod:  strings.TrimSpace(c.Query("payment_method")),
	}

	res, err := h.deps.Checkout.Run(c.Request.Context(), c.Param("sessionID"), params)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{
		Action:   res.Action,
		Location: res.Location,
		Step:     res.Step,
		Order:    res.Order,
		Intent:   res.Intent,
		Session:  toSessionResponse(res.Session),
	})
}

func (h *handlers) resetSession(c *gin.Context) {
	st, err := h.deps.Sessions.Reset(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(st))
}

func (h *handlers) deleteSession(c *gin.Context) {
	if err := h.deps.Sessions.Delete(c.Request.Context(), c.Param("sessionID")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
