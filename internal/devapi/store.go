// Package devapi is an in-memory stand-in for the check-in API, served by
// SERVICES=devapi so the web app can run locally against dev tokens.
package devapi

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	"github.com/clientcheckin/checkin-web/internal/domain/model"
)

// Store holds clients, recorded visits and signed-up accounts.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	clients  map[string]model.Client // keyed by barcode
	checkIns []model.CheckIn
	accounts map[string]struct{}
	seq      int
	now      func() time.Time
}

// NewStore returns an empty store. now defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		clients:  make(map[string]model.Client),
		accounts: make(map[string]struct{}),
		now:      now,
	}
}

// PutClient inserts or replaces the client reachable by barcode and reports
// whether it was new.
func (s *Store) PutClient(barcode string, c model.Client) (bool, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return false, apperrors.ValidationField("barcode", "barcode is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.clients[barcode]
	s.clients[barcode] = c
	return !exists, nil
}

// Client returns the client for barcode.
func (s *Store) Client(barcode string) (model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[barcode]
	if !ok {
		return model.Client{}, apperrors.NotFoundf("no client with barcode %q", barcode)
	}
	return c, nil
}

// RecordCheckIn appends a visit for the client behind barcode and stamps
// the client's last visit.
func (s *Store) RecordCheckIn(barcode string) (model.CheckInResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[barcode]
	if !ok {
		return model.CheckInResult{}, apperrors.NotFoundf("no client with barcode %q", barcode)
	}

	now := s.now().UTC()
	s.seq++
	ci := model.CheckIn{
		ID:          strconv.Itoa(s.seq),
		ClientID:    c.ClientID,
		LTFID:       c.LTFID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		Postal:      c.Postal,
		Phone:       c.Phone,
		Email:       c.Email,
		CheckInTime: now,
	}
	s.checkIns = append(s.checkIns, ci)
	c.LastVisit = now.Format(time.DateOnly)
	s.clients[barcode] = c

	return model.CheckInResult{
		ID:          ci.ID,
		ClientID:    ci.ClientID,
		CheckInTime: now,
		Message:     "Welcome back, " + c.FirstName + "!",
	}, nil
}

// CheckIns lists recorded visits, newest first.
func (s *Store) CheckIns() []model.CheckIn {
	s.mu.RLock()
	out := slices.Clone(s.checkIns)
	s.mu.RUnlock()
	slices.Reverse(out)
	if out == nil {
		out = []model.CheckIn{}
	}
	return out
}

// CreateAccount registers email once.
func (s *Store) CreateAccount(email string) error {
	key := strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[key]; ok {
		return apperrors.Validation("An account with this email already exists")
	}
	s.accounts[key] = struct{}{}
	return nil
}
