// Package journal implementa los logs durables del controller: JSONL
// append-only para decisiones y propuestas (fuente de verdad) y un snapshot
// sobrescrito atómicamente para observadores externos.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// maxLineSize limita el tamaño de una línea al escanear (los ciclos con
// muchos símbolos generan líneas largas).
const maxLineSize = 4 << 20

// DecisionLog es el journal de decisiones: una línea JSON por ciclo,
// append-only, un único escritor.
type DecisionLog struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewDecisionLog abre (o crea) el journal en la ruta dada.
func NewDecisionLog(path string) (*DecisionLog, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, fmt.Errorf("journal.NewDecisionLog: %w", err)
	}
	return &DecisionLog{f: f, path: path}, nil
}

// AppendCycle escribe el registro del ciclo como una línea JSON.
func (l *DecisionLog) AppendCycle(_ context.Context, rec domain.CycleRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := appendLine(l.f, rec); err != nil {
		return fmt.Errorf("journal.AppendCycle: %w", err)
	}
	return nil
}

// ScanCycles relee el journal desde el principio. Abre su propio descriptor
// de solo lectura, así que es seguro mientras el escritor sigue activo.
func (l *DecisionLog) ScanCycles(ctx context.Context, fn func(domain.CycleRecord) error) error {
	return scanLines(ctx, l.path, func(line []byte) error {
		var rec domain.CycleRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			// Una línea truncada por un crash a mitad de escritura no
			// invalida el resto del journal.
			return nil
		}
		return fn(rec)
	})
}

// Close cierra el descriptor de escritura.
func (l *DecisionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// ─── helpers compartidos por los journals ───

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func appendLine(f *os.File, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := f.Write(b); err != nil {
		return err
	}
	return nil
}

func scanLines(ctx context.Context, path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // journal todavía vacío
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
