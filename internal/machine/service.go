package machine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// ErrCounterWentBackwards rejects readings below the previous meter value.
// Meters are cumulative; a lower value means a typo or a swapped machine.
var ErrCounterWentBackwards = errors.New("machine: counter below previous reading")

// Store is the persistence boundary the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (*Machine, error)
	ListByFranchise(ctx context.Context, franchiseID int64, activeOnly bool) ([]Machine, error)
	Create(ctx context.Context, m Machine) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	AddReading(ctx context.Context, reading CounterReading) (int64, error)
	ListReadings(ctx context.Context, machineID int64) ([]CounterReading, error)
	LatestReading(ctx context.Context, machineID int64) (*CounterReading, error)
}

// TermsResolver resolves effective agreement terms for a franchise.
type TermsResolver interface {
	ResolveTerms(ctx context.Context, franchiseID int64, asOf time.Time) (settlement.AgreementTerms, error)
}

// Service provides business logic for machines and counter readings.
type Service struct {
	store Store
	terms TermsResolver
}

// NewService constructs a machine service.
func NewService(store Store, terms TermsResolver) *Service {
	return &Service{store: store, terms: terms}
}

// Create registers a machine.
func (s *Service) Create(ctx context.Context, req CreateMachineRequest) (*Machine, error) {
	installed, err := time.Parse(settlement.DateLayout, req.InstallationDate)
	if err != nil {
		return nil, fmt.Errorf("parse installation_date: %w", err)
	}
	m := Machine{
		FranchiseID:         req.FranchiseID,
		Name:                req.Name,
		Number:              req.Number,
		InstallationDate:    installed,
		InitialCoinCounter:  req.InitialCoinCounter,
		InitialPrizeCounter: req.InitialPrizeCounter,
		IsActive:            true,
	}
	id, err := s.store.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}
	m.ID = id
	return &m, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateMachineRequest) (*Machine, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Number != nil {
		updates["number"] = *req.Number
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.store.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update machine: %w", err)
		}
	}
	return s.store.Get(ctx, id)
}

// Get fetches a machine by id.
func (s *Service) Get(ctx context.Context, id int64) (*Machine, error) {
	return s.store.Get(ctx, id)
}

// ListByFranchise returns a franchise's machines.
func (s *Service) ListByFranchise(ctx context.Context, franchiseID int64, activeOnly bool) ([]Machine, error) {
	return s.store.ListByFranchise(ctx, franchiseID, activeOnly)
}

// syntheticInitialReading builds the virtual first reading from the
// machine's install-time counters.
func syntheticInitialReading(m *Machine) CounterReading {
	return CounterReading{
		MachineID:    m.ID,
		ReadingDate:  m.InstallationDate,
		CoinCounter:  m.InitialCoinCounter,
		PrizeCounter: m.InitialPrizeCounter,
		Synthetic:    true,
	}
}

// ListReadings returns the reading history with the synthetic initial
// reading prepended, oldest first.
func (s *Service) ListReadings(ctx context.Context, machineID int64) ([]CounterReading, error) {
	m, err := s.store.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.ListReadings(ctx, machineID)
	if err != nil {
		return nil, err
	}
	out := make([]CounterReading, 0, len(stored)+1)
	out = append(out, syntheticInitialReading(m))
	out = append(out, stored...)
	return out, nil
}

// AddReading validates and appends a counter reading, returning the delta
// against the previous reading together with a settlement preview under the
// terms in effect at the reading date.
func (s *Service) AddReading(ctx context.Context, machineID int64, req AddReadingRequest, createdBy int64) (*ReadingDelta, error) {
	m, err := s.store.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	readingDate, err := time.Parse(settlement.DateLayout, req.ReadingDate)
	if err != nil {
		return nil, fmt.Errorf("parse reading_date: %w", err)
	}

	previous := syntheticInitialReading(m)
	if latest, err := s.store.LatestReading(ctx, machineID); err == nil {
		previous = *latest
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load latest reading: %w", err)
	}

	if req.CoinCounter < previous.CoinCounter || req.PrizeCounter < previous.PrizeCounter {
		return nil, fmt.Errorf("%w: coins %.0f->%.0f prizes %.0f->%.0f",
			ErrCounterWentBackwards, previous.CoinCounter, req.CoinCounter,
			previous.PrizeCounter, req.PrizeCounter)
	}

	current := CounterReading{
		MachineID:    machineID,
		ReadingDate:  readingDate,
		CoinCounter:  req.CoinCounter,
		PrizeCounter: req.PrizeCounter,
		Notes:        req.Notes,
		CreatedBy:    createdBy,
	}
	id, err := s.store.AddReading(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("add reading: %w", err)
	}
	current.ID = id

	return s.buildDelta(ctx, m, previous, current)
}

// PreviewDelta computes the delta the next reading submission would settle,
// without writing anything. Used by the pay-to-Clowee modal.
func (s *Service) PreviewDelta(ctx context.Context, machineID int64, req AddReadingRequest) (*ReadingDelta, error) {
	m, err := s.store.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	readingDate, err := time.Parse(settlement.DateLayout, req.ReadingDate)
	if err != nil {
		return nil, fmt.Errorf("parse reading_date: %w", err)
	}

	previous := syntheticInitialReading(m)
	if latest, err := s.store.LatestReading(ctx, machineID); err == nil {
		previous = *latest
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load latest reading: %w", err)
	}

	current := CounterReading{
		MachineID:    machineID,
		ReadingDate:  readingDate,
		CoinCounter:  req.CoinCounter,
		PrizeCounter: req.PrizeCounter,
	}
	return s.buildDelta(ctx, m, previous, current)
}

func (s *Service) buildDelta(ctx context.Context, m *Machine, previous, current CounterReading) (*ReadingDelta, error) {
	coinSales := current.CoinCounter - previous.CoinCounter
	prizeOut := current.PrizeCounter - previous.PrizeCounter

	terms, err := s.terms.ResolveTerms(ctx, m.FranchiseID, current.ReadingDate)
	if err != nil {
		return nil, fmt.Errorf("resolve terms: %w", err)
	}
	stl := settlement.Calculate(settlement.Reading{CoinSales: coinSales, PrizeOutQuantity: prizeOut}, terms)

	return &ReadingDelta{
		Machine:    MachineRefView{ID: m.ID, Name: m.Name, Number: m.Number},
		Previous:   previous,
		Current:    current,
		CoinSales:  coinSales,
		PrizeOut:   prizeOut,
		Settlement: stl,
		Terms:      terms,
	}, nil
}
