// Package binance implementa el stream de precio de referencia sobre el
// combined trade stream de Binance vía websocket.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

const (
	baseURL          = "wss://stream.binance.com:9443/stream"
	handshakeTimeout = 10 * time.Second
	readDeadline     = 30 * time.Second
	pingInterval     = 15 * time.Second
	writeDeadline    = 5 * time.Second
	maxMessageSize   = 1 << 20
)

type envelope struct {
	Stream string `json:"stream"`
	Data   trade  `json:"data"`
}

type trade struct {
	Price     string `json:"p"`
	TradeTime int64  `json:"T"`
}

// Stream es una sesión del trade stream: conecta, lee y publica ticks hasta
// que la conexión muere o el contexto se cancela. La reconexión con backoff
// es responsabilidad del runner, no de este adaptador.
type Stream struct {
	streams map[string]string // stream de Binance ("btcusdt@trade") → símbolo ("BTC")
	url     string
	logger  *slog.Logger
}

// NewStream construye el adaptador para los símbolos dados. El mapa asocia
// cada símbolo de referencia con su stream de Binance en minúsculas
// (p.ej. "BTC" → "btcusdt").
func NewStream(symbolStreams map[string]string, logger *slog.Logger) (*Stream, error) {
	if len(symbolStreams) == 0 {
		return nil, fmt.Errorf("binance.NewStream: at least one symbol required")
	}

	streams := make(map[string]string, len(symbolStreams))
	var names []string
	for symbol, stream := range symbolStreams {
		name := strings.ToLower(stream) + "@trade"
		streams[name] = symbol
		names = append(names, name)
	}

	return &Stream{
		streams: streams,
		url:     fmt.Sprintf("%s?streams=%s", baseURL, strings.Join(names, "/")),
		logger:  logger,
	}, nil
}

// Stream implementa ports.PriceStream.
func (s *Stream) Stream(ctx context.Context, out chan<- domain.Tick) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("binance.Stream: dial: %w", err)
	}
	defer conn.Close()

	s.logger.Info("binance stream connected", "streams", len(s.streams))

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go s.keepAlive(pingCtx, conn)

	// Cierra la conexión cuando el contexto muere para desbloquear ReadMessage.
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("binance.Stream: read: %w", err)
		}

		tick, ok := s.parse(message)
		if !ok {
			continue
		}

		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Stream) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Warn("binance ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Stream) parse(message []byte) (domain.Tick, bool) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		s.logger.Warn("binance message decode failed", "error", err)
		return domain.Tick{}, false
	}

	symbol, ok := s.streams[env.Stream]
	if !ok {
		return domain.Tick{}, false
	}

	price, err := strconv.ParseFloat(env.Data.Price, 64)
	if err != nil || price <= 0 {
		s.logger.Warn("binance price invalid", "raw", env.Data.Price)
		return domain.Tick{}, false
	}

	return domain.Tick{
		Symbol: symbol,
		Price:  price,
		Ts:     time.UnixMilli(env.Data.TradeTime),
	}, true
}
