package franchise

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// ErrNotFound indicates the franchise or agreement does not exist.
var ErrNotFound = errors.New("franchise: not found")

// ErrDuplicateName indicates a franchise with the same name already exists.
var ErrDuplicateName = errors.New("franchise: name already exists")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const franchiseColumns = `id, name, contact_person, phone, address, coin_price, doll_price, electricity_cost,
vat_percentage, franchise_share, clowee_share, maintenance_percentage, payment_duration,
security_deposit, security_deposit_notes, bank_id, document_ref, is_active, created_at, updated_at`

func scanFranchise(row pgx.Row) (*Franchise, error) {
	var f Franchise
	err := row.Scan(&f.ID, &f.Name, &f.ContactPerson, &f.Phone, &f.Address, &f.CoinPrice, &f.DollPrice,
		&f.ElectricityCost, &f.VATPercentage, &f.FranchiseShare, &f.CloweeShare, &f.MaintenancePercentage,
		&f.PaymentDuration, &f.SecurityDeposit, &f.SecurityDepositNotes, &f.BankID, &f.DocumentRef,
		&f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Get fetches one franchise by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Franchise, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+franchiseColumns+` FROM franchises WHERE id = $1`, id)
	return scanFranchise(row)
}

// List returns a filtered, paginated franchise listing plus the total count.
func (r *Repository) List(ctx context.Context, req ListFranchisesRequest) ([]Franchise, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if req.Search != "" {
		args = append(args, "%"+strings.ToLower(req.Search)+"%")
		where = append(where, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if req.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM franchises WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM franchises WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		franchiseColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Franchise
	for rows.Next() {
		f, err := scanFranchise(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *f)
	}
	return out, total, rows.Err()
}

// Create inserts a franchise and returns its id.
func (r *Repository) Create(ctx context.Context, f Franchise) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO franchises
(name, contact_person, phone, address, coin_price, doll_price, electricity_cost, vat_percentage,
 franchise_share, clowee_share, maintenance_percentage, payment_duration, security_deposit,
 security_deposit_notes, bank_id, document_ref, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,TRUE,NOW(),NOW()) RETURNING id`,
		f.Name, f.ContactPerson, f.Phone, f.Address, f.CoinPrice, f.DollPrice, f.ElectricityCost,
		f.VATPercentage, f.FranchiseShare, f.CloweeShare, f.MaintenancePercentage, f.PaymentDuration,
		f.SecurityDeposit, f.SecurityDepositNotes, f.BankID, f.DocumentRef).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateName
		}
		return 0, err
	}
	return id, nil
}

// Update applies a column update map to a franchise.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	for col, val := range updates {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE franchises SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendAgreement inserts a new agreement row. Rows are never updated.
func (r *Repository) AppendAgreement(ctx context.Context, a AgreementRow) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO franchise_agreements
(franchise_id, effective_date, coin_price, doll_price, electricity_cost, vat_percentage,
 franchise_share, clowee_share, maintenance_percentage, notes, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW()) RETURNING id`,
		a.FranchiseID, a.EffectiveDate, a.CoinPrice, a.DollPrice, a.ElectricityCost, a.VATPercentage,
		a.FranchiseShare, a.CloweeShare, a.MaintenancePercentage, a.Notes, a.CreatedBy).Scan(&id)
	return id, err
}

// ListAgreements returns the agreement log for a franchise, newest first.
func (r *Repository) ListAgreements(ctx context.Context, franchiseID int64) ([]AgreementRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, franchise_id, effective_date, coin_price, doll_price,
electricity_cost, vat_percentage, franchise_share, clowee_share, maintenance_percentage, notes,
created_by, created_at
FROM franchise_agreements WHERE franchise_id = $1 ORDER BY effective_date DESC, id DESC`, franchiseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgreementRow
	for rows.Next() {
		var a AgreementRow
		if err := rows.Scan(&a.ID, &a.FranchiseID, &a.EffectiveDate, &a.CoinPrice, &a.DollPrice,
			&a.ElectricityCost, &a.VATPercentage, &a.FranchiseShare, &a.CloweeShare,
			&a.MaintenancePercentage, &a.Notes, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FranchiseBaseTerms implements settlement.TermsSource.
func (r *Repository) FranchiseBaseTerms(ctx context.Context, franchiseID int64) (settlement.AgreementTerms, error) {
	f, err := r.Get(ctx, franchiseID)
	if err != nil {
		return settlement.AgreementTerms{}, err
	}
	return f.BaseTerms(), nil
}

// AgreementsByFranchise implements settlement.TermsSource.
func (r *Repository) AgreementsByFranchise(ctx context.Context, franchiseID int64) ([]settlement.Agreement, error) {
	rows, err := r.ListAgreements(ctx, franchiseID)
	if err != nil {
		return nil, err
	}
	out := make([]settlement.Agreement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Agreement())
	}
	return out, nil
}
