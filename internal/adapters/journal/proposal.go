package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// ProposalLog es el journal de propuestas shadow: una línea JSON por evento
// de ciclo de vida (creación, resolución, aplazamiento).
type ProposalLog struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewProposalLog abre (o crea) el journal en la ruta dada.
func NewProposalLog(path string) (*ProposalLog, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, fmt.Errorf("journal.NewProposalLog: %w", err)
	}
	return &ProposalLog{f: f, path: path}, nil
}

// Append escribe un evento como una línea JSON.
func (l *ProposalLog) Append(_ context.Context, ev domain.ProposalEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := appendLine(l.f, ev); err != nil {
		return fmt.Errorf("journal.Append: %w", err)
	}
	return nil
}

// ScanEvents relee el journal desde el principio.
func (l *ProposalLog) ScanEvents(ctx context.Context, fn func(domain.ProposalEvent) error) error {
	return scanLines(ctx, l.path, func(line []byte) error {
		var ev domain.ProposalEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil
		}
		return fn(ev)
	})
}

// Close cierra el descriptor de escritura.
func (l *ProposalLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
