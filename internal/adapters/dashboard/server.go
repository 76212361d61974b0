package dashboard

import (
	"context"
	"net/http"
	"time"

	"aizybot/internal/domain"
	"aizybot/internal/ports"

	"github.com/gorilla/websocket"
)

type event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type candlePayload struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

type orderPayload struct {
	ID        string    `json:"id"`
	Pair      string    `json:"pair"`
	Side      string    `json:"side"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type tradePayload struct {
	OrderID    string    `json:"orderId"`
	Pair       string    `json:"pair"`
	Side       string    `json:"side"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	ProfitLoss float64   `json:"profitLoss"`
	ROE        float64   `json:"roe"`
	Duration   float64   `json:"duration"`
	ClosedAt   time.Time `json:"closedAt"`
	Reason     string    `json:"reason"`
}

// Server streams simulation events to WebSocket clients. It implements
// ports.EventPublisher; publishing never blocks the caller.
type Server struct {
	logger   ports.Logger
	hub      *hub
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer creates a dashboard event server listening on addr.
func NewServer(addr string, logger ports.Logger) *Server {
	s := &Server{
		logger:   logger,
		hub:      newHub(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/events", s.handleEvents)
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info(ctx, "Dashboard listening", map[string]interface{}{"addr": s.srv.Addr})
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(ctx, err, "Dashboard server stopped")
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(64)
	defer s.hub.Unsubscribe(sub)

	for ev := range sub.ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// PublishCandle broadcasts a candle event to all connected clients.
func (s *Server) PublishCandle(candle *domain.Candle) {
	s.hub.Broadcast(event{Type: "candle", Data: candlePayload{
		Timestamp: candle.Timestamp,
		Open:      candle.Open,
		High:      candle.High,
		Low:       candle.Low,
		Close:     candle.Close,
		Volume:    candle.Volume,
	}})
}

// PublishOrder broadcasts an order activation event.
func (s *Server) PublishOrder(order *domain.Order) {
	s.hub.Broadcast(event{Type: "order", Data: orderPayload{
		ID:        order.ID,
		Pair:      order.Pair,
		Side:      string(order.Side),
		Amount:    order.Amount,
		Price:     order.Price,
		Kind:      string(order.Kind),
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}})
}

// PublishReport broadcasts the end-of-run report summary.
func (s *Server) PublishReport(report interface{}) {
	s.hub.Broadcast(event{Type: "report", Data: report})
}

// PublishClose broadcasts a completed trade event.
func (s *Server) PublishClose(trade *domain.TradeRecord) {
	s.hub.Broadcast(event{Type: "close", Data: tradePayload{
		OrderID:    trade.OrderID,
		Pair:       trade.Pair,
		Side:       string(trade.Side),
		EntryPrice: trade.EntryPrice,
		ExitPrice:  trade.ExitPrice,
		ProfitLoss: trade.ProfitLoss,
		ROE:        trade.ROE,
		Duration:   trade.Duration,
		ClosedAt:   trade.ClosedAt,
		Reason:     string(trade.Reason),
	}})
}
