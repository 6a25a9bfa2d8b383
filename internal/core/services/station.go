// internal/core/services/station.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

// maxVisibleErrors bounds the error list a station keeps for display
const maxVisibleErrors = 20

// Messages shown to staff when a lookup fails for a reason other than an
// unknown barcode.
const (
	msgFetchItemsFailed   = "Error fetching items. Please try again."
	msgFetchHoldingFailed = "Error fetching holding details."
	msgStoreUnavailable   = "Saved scans could not be loaded. Please try again."
)

// screenState is the part of a station screen shared by the inventory and
// discard workflows. mu guards the embedding struct as a whole.
type screenState struct {
	mu           sync.Mutex
	loaded       bool
	errors       []string
	highlighted  string
	highlightSeq uint64
	loading      int
}

// highlight marks barcode for d; a later highlight replaces it
func (s *screenState) highlight(barcode string, d time.Duration) {
	s.highlightSeq++
	seq := s.highlightSeq
	s.highlighted = barcode
	if d <= 0 {
		return
	}
	time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.highlightSeq == seq {
			s.highlighted = ""
		}
	})
}

// loadFailed records a failed store read and releases s. The state stays
// unloaded so nothing is written over the stored collections; the next
// access reads the store again.
func (s *screenState) loadFailed(station string, err error) error {
	s.addError(msgStoreUnavailable)
	s.mu.Unlock()
	return fmt.Errorf("failed to load station %s: %w", station, err)
}

// invalidate makes the next access read the store again
func (s *screenState) invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

func (s *screenState) addError(msg string) {
	s.errors = append(s.errors, msg)
	if len(s.errors) > maxVisibleErrors {
		s.errors = s.errors[len(s.errors)-maxVisibleErrors:]
	}
}

func (s *screenState) visibleErrors() []string {
	return append([]string{}, s.errors...)
}

// visibleMessage is what staff see for err
func visibleMessage(err error, fallback string) string {
	var notFound *domain.NotFoundError
	var ambiguous *domain.AmbiguousBarcodeError
	switch {
	case errors.As(err, &notFound):
		return notFound.Message
	case errors.As(err, &ambiguous):
		return ambiguous.Error()
	case errors.Is(err, domain.ErrValidationGap), errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	default:
		return fallback
	}
}

// stations lazily creates one state per station id
type stations[T any] struct {
	mu     sync.Mutex
	states map[string]*T
}

func newStations[T any]() *stations[T] {
	return &stations[T]{states: make(map[string]*T)}
}

func (s *stations[T]) get(station string) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[station]
	if !ok {
		st = new(T)
		s.states[station] = st
	}
	return st
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
