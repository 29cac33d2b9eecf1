package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dailyyield/apiserver/types"
)

const packageColumns = `package_id, name, description, investment_amount, earnings_per_day,
		total_earnings, earnings_days, maximum_purchase, is_active, created_at`

// PackageRepository handles persistence for the package catalog.
type PackageRepository struct {
	db *sql.DB
}

func NewPackageRepository(db *sql.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func scanPackage(row rowScanner) (types.Package, error) {
	var pkg types.Package
	err := row.Scan(
		&pkg.PackageID,
		&pkg.Name,
		&pkg.Description,
		&pkg.InvestmentAmount,
		&pkg.EarningsPerDay,
		&pkg.TotalEarnings,
		&pkg.EarningsDays,
		&pkg.MaximumPurchase,
		&pkg.IsActive,
		&pkg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Package{}, ErrNotFound
		}
		return types.Package{}, err
	}
	return pkg, nil
}

func (r *PackageRepository) Create(ctx context.Context, pkg types.Package) (types.Package, error) {
	const query = `
		INSERT INTO packages (name, description, investment_amount, earnings_per_day,
			total_earnings, earnings_days, maximum_purchase, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING package_id, created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		pkg.Name,
		pkg.Description,
		pkg.InvestmentAmount,
		pkg.EarningsPerDay,
		pkg.TotalEarnings,
		pkg.EarningsDays,
		pkg.MaximumPurchase,
		pkg.IsActive,
	).Scan(&pkg.PackageID, &pkg.CreatedAt)
	if err != nil {
		return types.Package{}, err
	}
	return pkg, nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int) (types.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE package_id = $1`
	return scanPackage(r.db.QueryRowContext(ctx, query, id))
}

// ListActive returns purchasable packages, newest first.
func (r *PackageRepository) ListActive(ctx context.Context) ([]types.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE is_active = TRUE ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListAll returns every package regardless of state, newest first.
func (r *PackageRepository) ListAll(ctx context.Context) ([]types.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *PackageRepository) list(ctx context.Context, query string) ([]types.Package, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := []types.Package{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return packages, nil
}
