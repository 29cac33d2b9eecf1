package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dailyyield/apiserver/internal/db"
	"github.com/dailyyield/apiserver/types"
	"github.com/shopspring/decimal"
)

// PurchaseRepository handles the purchase ledger and the wallet mutations tied to it.
type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Buy debits the buyer, records the purchase and credits one day of earnings
// in a single transaction. The debit is conditional on the balance covering
// the amount, so a failed buy leaves the wallet and ledger untouched.
func (r *PurchaseRepository) Buy(ctx context.Context, userID, packageID int, amount decimal.Decimal) (types.PurchaseReceipt, error) {
	receipt := types.PurchaseReceipt{}
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const debitQuery = `
			UPDATE users
			SET wallet = wallet - $1
			WHERE id = $2 AND wallet >= $1
			RETURNING wallet`
		if err := tx.QueryRowContext(ctx, debitQuery, amount, userID).Scan(&receipt.Wallet); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("debit wallet: %w", err)
			}
			var exists bool
			const existsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
			if err := tx.QueryRowContext(ctx, existsQuery, userID).Scan(&exists); err != nil {
				return fmt.Errorf("check user: %w", err)
			}
			if !exists {
				return ErrNotFound
			}
			return ErrInsufficientFunds
		}

		const packageQuery = `
			SELECT earnings_per_day, is_active
			FROM packages
			WHERE package_id = $1
			FOR SHARE`
		var active bool
		if err := tx.QueryRowContext(ctx, packageQuery, packageID).Scan(&receipt.Credited, &active); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPackageUnavailable
			}
			return fmt.Errorf("load package: %w", err)
		}
		if !active {
			return ErrPackageUnavailable
		}

		receipt.Purchase = types.Purchase{
			UserID:           userID,
			PackageID:        packageID,
			InvestmentAmount: amount,
			IsActive:         true,
		}
		const insertQuery = `
			INSERT INTO purchases (user_id, package_id, investment_amount, is_active)
			VALUES ($1, $2, $3, TRUE)
			RETURNING id, purchase_date`
		if err := tx.QueryRowContext(ctx, insertQuery, userID, packageID, amount).
			Scan(&receipt.Purchase.ID, &receipt.Purchase.PurchaseDate); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		const creditQuery = `UPDATE users SET wallet = wallet + $1 WHERE id = $2 RETURNING wallet`
		if err := tx.QueryRowContext(ctx, creditQuery, receipt.Credited, userID).Scan(&receipt.Wallet); err != nil {
			return fmt.Errorf("credit first day: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.PurchaseReceipt{}, err
	}
	return receipt, nil
}

// ListActiveByUser returns the user's active purchases joined with package details.
func (r *PurchaseRepository) ListActiveByUser(ctx context.Context, userID int) ([]types.ActivePurchase, error) {
	const query = `
		SELECT p.id, p.user_id, p.package_id, p.investment_amount, p.purchase_date, p.is_active,
			pk.name, pk.description, pk.earnings_per_day, pk.earnings_days, pk.total_earnings
		FROM purchases p
		JOIN packages pk ON pk.package_id = p.package_id
		WHERE p.user_id = $1 AND p.is_active = TRUE
		ORDER BY p.purchase_date DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []types.ActivePurchase{}
	for rows.Next() {
		var item types.ActivePurchase
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.PackageID,
			&item.InvestmentAmount,
			&item.PurchaseDate,
			&item.IsActive,
			&item.Name,
			&item.Description,
			&item.EarningsPerDay,
			&item.EarningsDays,
			&item.TotalEarnings,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PurchaseRepository) ListAll(ctx context.Context) ([]types.Purchase, error) {
	const query = `
		SELECT id, user_id, package_id, investment_amount, purchase_date, is_active
		FROM purchases
		ORDER BY purchase_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := []types.Purchase{}
	for rows.Next() {
		var p types.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.PackageID, &p.InvestmentAmount, &p.PurchaseDate, &p.IsActive); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

// SalesByPackage aggregates purchase count and invested total per package.
func (r *PurchaseRepository) SalesByPackage(ctx context.Context) ([]types.PackageSale, error) {
	const query = `
		SELECT pk.package_id, pk.name, COUNT(p.id), COALESCE(SUM(p.investment_amount), 0)
		FROM packages pk
		LEFT JOIN purchases p ON p.package_id = pk.package_id
		GROUP BY pk.package_id, pk.name
		ORDER BY 4 DESC, pk.package_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []types.PackageSale{}
	for rows.Next() {
		var s types.PackageSale
		if err := rows.Scan(&s.PackageID, &s.Name, &s.TotalSales, &s.TotalInvestment); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

// Accrue credits every user with the sum of earnings_per_day over their active
// purchases in one statement. Each call is an independent credit.
func (r *PurchaseRepository) Accrue(ctx context.Context) ([]types.AccrualCredit, error) {
	const query = `
		UPDATE users u
		SET wallet = u.wallet + s.total
		FROM (
			SELECT p.user_id, SUM(pk.earnings_per_day) AS total
			FROM purchases p
			JOIN packages pk ON pk.package_id = p.package_id
			WHERE p.is_active = TRUE
			GROUP BY p.user_id
		) s
		WHERE u.id = s.user_id
		RETURNING u.id, s.total`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credits := []types.AccrualCredit{}
	for rows.Next() {
		var c types.AccrualCredit
		if err := rows.Scan(&c.UserID, &c.Amount); err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return credits, nil
}
