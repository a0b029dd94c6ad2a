package franchise

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (*Franchise, error)
	List(ctx context.Context, req ListFranchisesRequest) ([]Franchise, int, error)
	Create(ctx context.Context, f Franchise) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	AppendAgreement(ctx context.Context, a AgreementRow) (int64, error)
	ListAgreements(ctx context.Context, franchiseID int64) ([]AgreementRow, error)
	FranchiseBaseTerms(ctx context.Context, franchiseID int64) (settlement.AgreementTerms, error)
	AgreementsByFranchise(ctx context.Context, franchiseID int64) ([]settlement.Agreement, error)
}

// Service provides business logic for the franchise registry.
type Service struct {
	store    Store
	resolver *settlement.Resolver
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService constructs a franchise service.
func NewService(store Store, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: settlement.NewResolver(store),
		audit:    audit,
		logger:   logger,
	}
}

// Create registers a franchise.
func (s *Service) Create(ctx context.Context, req CreateFranchiseRequest, createdBy int64) (*Franchise, error) {
	s.warnOnOddShareSplit(req.FranchiseShare, req.CloweeShare, req.Name)

	f := Franchise{
		Name:                  req.Name,
		ContactPerson:         req.ContactPerson,
		Phone:                 req.Phone,
		Address:               req.Address,
		CoinPrice:             req.CoinPrice,
		DollPrice:             req.DollPrice,
		ElectricityCost:       req.ElectricityCost,
		VATPercentage:         req.VATPercentage,
		FranchiseShare:        req.FranchiseShare,
		CloweeShare:           req.CloweeShare,
		MaintenancePercentage: req.MaintenancePercentage,
		PaymentDuration:       req.PaymentDuration,
		SecurityDeposit:       req.SecurityDeposit,
		SecurityDepositNotes:  req.SecurityDepositNotes,
		BankID:                req.BankID,
		DocumentRef:           req.DocumentRef,
		IsActive:              true,
	}

	id, err := s.store.Create(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("create franchise: %w", err)
	}
	f.ID = id

	s.recordAudit(ctx, createdBy, "franchise.create", id)
	return &f, nil
}

// Update applies a partial update to the base record.
func (s *Service) Update(ctx context.Context, id int64, req UpdateFranchiseRequest, actorID int64) (*Franchise, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ContactPerson != nil {
		updates["contact_person"] = *req.ContactPerson
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.CoinPrice != nil {
		updates["coin_price"] = *req.CoinPrice
	}
	if req.DollPrice != nil {
		updates["doll_price"] = *req.DollPrice
	}
	if req.ElectricityCost != nil {
		updates["electricity_cost"] = *req.ElectricityCost
	}
	if req.VATPercentage != nil {
		updates["vat_percentage"] = *req.VATPercentage
	}
	if req.FranchiseShare != nil {
		updates["franchise_share"] = *req.FranchiseShare
	}
	if req.CloweeShare != nil {
		updates["clowee_share"] = *req.CloweeShare
	}
	if req.MaintenancePercentage != nil {
		updates["maintenance_percentage"] = *req.MaintenancePercentage
	}
	if req.PaymentDuration != nil {
		updates["payment_duration"] = *req.PaymentDuration
	}
	if req.SecurityDeposit != nil {
		updates["security_deposit"] = *req.SecurityDeposit
	}
	if req.SecurityDepositNotes != nil {
		updates["security_deposit_notes"] = *req.SecurityDepositNotes
	}
	if req.BankID != nil {
		updates["bank_id"] = *req.BankID
	}
	if req.DocumentRef != nil {
		updates["document_ref"] = *req.DocumentRef
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return existing, nil
	}

	fShare := existing.FranchiseShare
	cShare := existing.CloweeShare
	if req.FranchiseShare != nil {
		fShare = *req.FranchiseShare
	}
	if req.CloweeShare != nil {
		cShare = *req.CloweeShare
	}
	s.warnOnOddShareSplit(fShare, cShare, existing.Name)

	if err := s.store.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update franchise: %w", err)
	}

	s.recordAudit(ctx, actorID, "franchise.update", id)
	return s.store.Get(ctx, id)
}

// Get fetches a franchise by id.
func (s *Service) Get(ctx context.Context, id int64) (*Franchise, error) {
	return s.store.Get(ctx, id)
}

// List returns a paginated franchise listing.
func (s *Service) List(ctx context.Context, req ListFranchisesRequest) ([]Franchise, int, error) {
	return s.store.List(ctx, req)
}

// AppendAgreement records a new version of the franchise terms. The previous
// rows stay untouched so historical settlements keep resolving correctly.
func (s *Service) AppendAgreement(ctx context.Context, franchiseID int64, req AppendAgreementRequest, createdBy int64) (*AgreementRow, error) {
	if _, err := s.store.Get(ctx, franchiseID); err != nil {
		return nil, err
	}
	effective, err := time.Parse(settlement.DateLayout, req.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("parse effective_date: %w", err)
	}
	s.warnOnOddShareSplit(req.FranchiseShare, req.CloweeShare, fmt.Sprintf("franchise %d agreement", franchiseID))

	row := AgreementRow{
		FranchiseID:           franchiseID,
		EffectiveDate:         effective,
		CoinPrice:             req.CoinPrice,
		DollPrice:             req.DollPrice,
		ElectricityCost:       req.ElectricityCost,
		VATPercentage:         req.VATPercentage,
		FranchiseShare:        req.FranchiseShare,
		CloweeShare:           req.CloweeShare,
		MaintenancePercentage: req.MaintenancePercentage,
		Notes:                 req.Notes,
		CreatedBy:             createdBy,
	}
	id, err := s.store.AppendAgreement(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("append agreement: %w", err)
	}
	row.ID = id

	s.recordAudit(ctx, createdBy, "franchise.agreement.append", franchiseID)
	return &row, nil
}

// ListAgreements returns the agreement log, newest first.
func (s *Service) ListAgreements(ctx context.Context, franchiseID int64) ([]AgreementRow, error) {
	if _, err := s.store.Get(ctx, franchiseID); err != nil {
		return nil, err
	}
	return s.store.ListAgreements(ctx, franchiseID)
}

// ResolveTerms returns the term set in effect for the franchise at asOf.
func (s *Service) ResolveTerms(ctx context.Context, franchiseID int64, asOf time.Time) (settlement.AgreementTerms, error) {
	return s.resolver.Resolve(ctx, franchiseID, asOf)
}

// Shares that do not sum to 100 are legal for historical data but almost
// always an input mistake for new records.
func (s *Service) warnOnOddShareSplit(franchiseShare, cloweeShare float64, name string) {
	if s.logger == nil {
		return
	}
	if franchiseShare == 0 && cloweeShare == 0 {
		return
	}
	if sum := franchiseShare + cloweeShare; sum != 100 {
		s.logger.Warn("share split does not sum to 100",
			slog.String("franchise", name),
			slog.Float64("franchise_share", franchiseShare),
			slog.Float64("clowee_share", cloweeShare))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "franchise",
		EntityID: fmt.Sprintf("%d", entityID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
