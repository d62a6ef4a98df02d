package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"brokergate/internal/broker"
	"brokergate/internal/httputil"
	"brokergate/internal/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, OK("service running", h.svc.Health()))
}

type loginRequest struct {
	BrokerType string `json:"broker_type"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	ExePath    string `json:"exe_path"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	creds := broker.Credentials{
		Kind:     strings.TrimSpace(req.BrokerType),
		Username: req.Username,
		Password: req.Password,
		ExePath:  req.ExePath,
	}
	if err := validateLogin(creds); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	if err := h.svc.Login(r.Context(), creds); err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK("logged in to broker "+creds.Kind,
		map[string]string{"broker_kind": creds.Kind}))
}

// Logout always answers 200: tearing down a session that does not
// exist is reported through the success flag, not an error status.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		httputil.WriteJSON(w, http.StatusOK, Fail("not logged in"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK("logged out", struct{}{}))
}

type orderRequest struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, broker.SideBuy)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, broker.SideSell)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, side broker.Side) {
	var req orderRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	symbol := strings.ToLower(strings.TrimSpace(req.Symbol))
	if err := validateOrder(symbol, req.Price, req.Quantity); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	ack, err := h.svc.PlaceOrder(r.Context(), broker.OrderRequest{
		Symbol:   symbol,
		Price:    req.Price,
		Quantity: req.Quantity,
		Side:     side,
	})
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK(string(side)+" order submitted", ack))
}

type cancelRequest struct {
	OrderID string `json:"order_id"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	if err := validateCancel(req.OrderID); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	res, err := h.svc.Cancel(r.Context(), req.OrderID)
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK("cancel submitted", res))
}

func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	positions, err := h.svc.Positions(r.Context())
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK("positions fetched", positions))
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.Balance(r.Context())
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK("balance fetched", balance))
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.OpenOrders(r.Context())
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK("orders fetched", orders))
}

func (h *Handler) TodayTrades(w http.ResponseWriter, r *http.Request) {
	fills, err := h.svc.TodayFills(r.Context())
	if err != nil {
		h.writeOpError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OK("fills fetched", fills))
}

// writeOpError maps session preconditions to 503 and everything else
// (opaque collaborator failures, verbatim) to 500.
func (h *Handler) writeOpError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotConnected) {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, Fail("not logged in to a broker"))
		return
	}
	httputil.WriteJSON(w, http.StatusInternalServerError, Fail(err.Error()))
}
