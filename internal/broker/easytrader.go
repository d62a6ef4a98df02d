package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// EasyTrader talks to the easytrader automation service over HTTP. The
// service drives a single desktop client instance, so one EasyTrader
// handle corresponds to one (attempted) login and must not be shared
// between concurrent callers.
type EasyTrader struct {
	baseURL string
	client  *http.Client
}

func NewEasyTrader(serviceURL string) *EasyTrader {
	return &EasyTrader{
		baseURL: strings.TrimRight(serviceURL, "/"),
		client:  &http.Client{},
	}
}

// serviceResponse is the envelope every automation-service endpoint
// returns on success.
type serviceResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// serviceError is the body the service returns with non-200 statuses.
type serviceError struct {
	Detail string `json:"detail"`
}

func (b *EasyTrader) Login(ctx context.Context, creds Credentials) error {
	proc, ok := loginProcs[creds.Kind]
	if !ok {
		return fmt.Errorf("unsupported broker kind %q", creds.Kind)
	}
	resp, err := b.post(ctx, "/login", proc(creds))
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !resp.Success {
		return errors.New(resp.Message)
	}
	return nil
}

func (b *EasyTrader) Logout(ctx context.Context) error {
	resp, err := b.get(ctx, "/logout")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if !resp.Success {
		return errors.New(resp.Message)
	}
	return nil
}

type orderPayload struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Amount int     `json:"amount"`
}

func (b *EasyTrader) PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error) {
	path := "/buy"
	if req.Side == SideSell {
		path = "/sell"
	}
	resp, err := b.post(ctx, path, orderPayload{
		Symbol: req.Symbol,
		Price:  req.Price.InexactFloat64(),
		Amount: req.Quantity,
	})
	if err != nil {
		return OrderAck{}, err
	}
	if !resp.Success {
		return OrderAck{}, errors.New(resp.Message)
	}
	var data struct {
		OrderID string `json:"order_id"`
	}
	_ = json.Unmarshal(resp.Data, &data)
	return OrderAck{
		OrderID:  data.OrderID,
		Symbol:   req.Symbol,
		Price:    req.Price,
		Quantity: req.Quantity,
		Side:     req.Side,
	}, nil
}

func (b *EasyTrader) CancelOrder(ctx context.Context, orderID string) (string, error) {
	resp, err := b.post(ctx, "/cancel", map[string]string{"order_id": orderID})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", errors.New(resp.Message)
	}
	var data struct {
		Result json.RawMessage `json:"result"`
	}
	_ = json.Unmarshal(resp.Data, &data)
	return strings.Trim(string(data.Result), `"`), nil
}

func (b *EasyTrader) Balance(ctx context.Context) (*Balance, error) {
	resp, err := b.get(ctx, "/balance")
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New(resp.Message)
	}
	var m map[string]any
	if err := json.Unmarshal(resp.Data, &m); err != nil {
		return nil, fmt.Errorf("balance payload: %w", err)
	}
	return &Balance{
		TotalAssets:   mapDec(m, "total_assets"),
		Cash:          mapDec(m, "cash"),
		MarketValue:   mapDec(m, "market_value"),
		TotalProfit:   mapDec(m, "total_profit"),
		AvailableCash: mapDec(m, "available_cash"),
		FrozenCash:    mapDec(m, "frozen_cash"),
		UpdateTime:    resp.Timestamp,
	}, nil
}

func (b *EasyTrader) Positions(ctx context.Context) ([]Position, error) {
	resp, err := b.get(ctx, "/portfolio")
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New(resp.Message)
	}
	var rows []map[string]any
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("portfolio payload: %w", err)
	}
	positions := make([]Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, Position{
			Symbol:        mapStr(row, "证券代码"),
			Name:          mapStr(row, "证券名称"),
			Quantity:      mapInt(row, "持仓数量"),
			Available:     mapInt(row, "可用数量"),
			CostPrice:     mapDec(row, "成本价"),
			CurrentPrice:  mapDec(row, "当前价"),
			MarketValue:   mapDec(row, "市值"),
			Profit:        mapDec(row, "盈亏"),
			ProfitPercent: mapDec(row, "盈亏比例"),
		})
	}
	return positions, nil
}

func (b *EasyTrader) OpenOrders(ctx context.Context) ([]Order, error) {
	resp, err := b.get(ctx, "/orders")
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New(resp.Message)
	}
	var rows []map[string]any
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("orders payload: %w", err)
	}
	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, Order{
			OrderID:   mapStr(row, "委托编号"),
			Symbol:    mapStr(row, "证券代码"),
			Name:      mapStr(row, "证券名称"),
			Side:      mapStr(row, "操作"),
			Price:     mapDec(row, "价格"),
			Quantity:  mapInt(row, "数量"),
			FilledQty: mapInt(row, "成交数量"),
			Status:    mapStr(row, "状态"),
			OrderTime: mapStr(row, "委托时间"),
		})
	}
	return orders, nil
}

func (b *EasyTrader) TodayFills(ctx context.Context) ([]Fill, error) {
	resp, err := b.get(ctx, "/today_trades")
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New(resp.Message)
	}
	var rows []map[string]any
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("today_trades payload: %w", err)
	}
	fills := make([]Fill, 0, len(rows))
	for _, row := range rows {
		fills = append(fills, Fill{
			FillID:     mapStr(row, "成交编号"),
			OrderID:    mapStr(row, "委托编号"),
			Symbol:     mapStr(row, "证券代码"),
			Name:       mapStr(row, "证券名称"),
			Side:       mapStr(row, "操作"),
			Price:      mapDec(row, "成交价"),
			Quantity:   mapInt(row, "成交数量"),
			FillTime:   mapStr(row, "成交时间"),
			Commission: mapDec(row, "手续费"),
		})
	}
	return fills, nil
}

func (b *EasyTrader) post(ctx context.Context, path string, body any) (*serviceResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req)
}

func (b *EasyTrader) get(ctx context.Context, path string) (*serviceResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return b.do(req)
}

func (b *EasyTrader) do(req *http.Request) (*serviceResponse, error) {
	httpResp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	// Non-200 statuses carry {"detail": "..."} instead of the envelope.
	if httpResp.StatusCode != http.StatusOK {
		var svcErr serviceError
		if err := json.NewDecoder(httpResp.Body).Decode(&svcErr); err == nil && svcErr.Detail != "" {
			return nil, errors.New(svcErr.Detail)
		}
		return nil, fmt.Errorf("broker service returned status %d", httpResp.StatusCode)
	}
	var resp serviceResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode broker service response: %w", err)
	}
	return &resp, nil
}

func mapStr(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mapInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return int(d.IntPart())
		}
	}
	return 0
}

func mapDec(m map[string]any, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}
