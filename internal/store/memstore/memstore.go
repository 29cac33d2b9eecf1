// Package memstore is an in-memory implementation of the user, package and
// purchase repositories with the same error contract as the postgres store.
// It backs service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dailyyield/apiserver/internal/store"
	"github.com/dailyyield/apiserver/types"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu        sync.Mutex
	users     map[int]types.User
	packages  map[int]types.Package
	purchases []types.Purchase
	nextUser  int
	nextPkg   int
	nextBuy   int
	clock     time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[int]types.User),
		packages: make(map[int]types.Package),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering by time is stable.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// --- users ---

func (s *Store) GetByID(ctx context.Context, id int) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetByMobile(ctx context.Context, mobile string) (types.User, error) {
	return s.findUser(func(u types.User) bool { return u.MobileNumber == mobile })
}

func (s *Store) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.findUser(func(u types.User) bool { return email != "" && u.Email == email })
}

func (s *Store) findUser(match func(types.User) bool) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if match(user) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *Store) ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error) {
	_, err := s.findUser(func(u types.User) bool {
		return (email != "" && u.Email == email) || u.MobileNumber == mobile
	})
	return err == nil, nil
}

func (s *Store) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := s.findUser(func(u types.User) bool { return u.ReferralCode == code })
	return err == nil, nil
}

func (s *Store) UserIDExists(ctx context.Context, userID string) (bool, error) {
	_, err := s.findUser(func(u types.User) bool { return u.UserID == userID })
	return err == nil, nil
}

func (s *Store) Create(ctx context.Context, user types.User) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		switch {
		case user.Email != "" && existing.Email == user.Email:
			return types.User{}, store.ErrDuplicateEmail
		case existing.MobileNumber == user.MobileNumber:
			return types.User{}, store.ErrDuplicateMobile
		case existing.UserID == user.UserID, existing.ReferralCode == user.ReferralCode:
			return types.User{}, store.ErrDuplicateCode
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	user.Wallet = decimal.Zero
	user.CreatedAt = s.tick()
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) UpdateUsername(ctx context.Context, id int, username string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.Username = username
	s.users[id] = user
	return user, nil
}

func (s *Store) SetWallet(ctx context.Context, id int, wallet decimal.Decimal) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.Wallet = wallet
	s.users[id] = user
	return user, nil
}

func (s *Store) List(ctx context.Context) ([]types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]types.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) ListReferrals(ctx context.Context, code string) ([]types.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	referrals := []types.Referral{}
	for _, user := range s.users {
		if user.ReferredBy != nil && *user.ReferredBy == code {
			referrals = append(referrals, types.Referral{
				Username:  user.Username,
				UserID:    user.UserID,
				CreatedAt: user.CreatedAt,
			})
		}
	}
	sort.Slice(referrals, func(i, j int) bool { return referrals[i].CreatedAt.After(referrals[j].CreatedAt) })
	return referrals, nil
}

// --- packages ---

// Packages adapts the store to the package repository, whose Create and
// GetByID collide with the user methods.
func (s *Store) Packages() *PackageRepo {
	return &PackageRepo{s: s}
}

type PackageRepo struct {
	s *Store
}

func (r *PackageRepo) Create(ctx context.Context, pkg types.Package) (types.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextPkg++
	pkg.PackageID = r.s.nextPkg
	pkg.CreatedAt = r.s.tick()
	r.s.packages[pkg.PackageID] = pkg
	return pkg, nil
}

func (r *PackageRepo) GetByID(ctx context.Context, id int) (types.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pkg, ok := r.s.packages[id]
	if !ok {
		return types.Package{}, store.ErrNotFound
	}
	return pkg, nil
}

func (r *PackageRepo) ListActive(ctx context.Context) ([]types.Package, error) {
	return r.list(true), nil
}

func (r *PackageRepo) ListAll(ctx context.Context) ([]types.Package, error) {
	return r.list(false), nil
}

func (r *PackageRepo) list(activeOnly bool) []types.Package {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pkgs := []types.Package{}
	for _, pkg := range r.s.packages {
		if activeOnly && !pkg.IsActive {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].CreatedAt.After(pkgs[j].CreatedAt) })
	return pkgs
}

// --- purchases ---

func (s *Store) Buy(ctx context.Context, userID, packageID int, amount decimal.Decimal) (types.PurchaseReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return types.PurchaseReceipt{}, store.ErrNotFound
	}
	if user.Wallet.LessThan(amount) {
		return types.PurchaseReceipt{}, store.ErrInsufficientFunds
	}
	pkg, ok := s.packages[packageID]
	if !ok || !pkg.IsActive {
		return types.PurchaseReceipt{}, store.ErrPackageUnavailable
	}

	s.nextBuy++
	purchase := types.Purchase{
		ID:               s.nextBuy,
		UserID:           userID,
		PackageID:        packageID,
		InvestmentAmount: amount,
		PurchaseDate:     s.tick(),
		IsActive:         true,
	}
	s.purchases = append(s.purchases, purchase)

	user.Wallet = user.Wallet.Sub(amount).Add(pkg.EarningsPerDay)
	s.users[userID] = user

	return types.PurchaseReceipt{Purchase: purchase, Wallet: user.Wallet, Credited: pkg.EarningsPerDay}, nil
}

func (s *Store) ListActiveByUser(ctx context.Context, userID int) ([]types.ActivePurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []types.ActivePurchase{}
	for i := len(s.purchases) - 1; i >= 0; i-- {
		p := s.purchases[i]
		if p.UserID != userID || !p.IsActive {
			continue
		}
		pkg := s.packages[p.PackageID]
		items = append(items, types.ActivePurchase{
			Purchase:       p,
			Name:           pkg.Name,
			Description:    pkg.Description,
			EarningsPerDay: pkg.EarningsPerDay,
			EarningsDays:   pkg.EarningsDays,
			TotalEarnings:  pkg.TotalEarnings,
		})
	}
	return items, nil
}

func (s *Store) ListAll(ctx context.Context) ([]types.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Purchase, 0, len(s.purchases))
	for i := len(s.purchases) - 1; i >= 0; i-- {
		out = append(out, s.purchases[i])
	}
	return out, nil
}

func (s *Store) SalesByPackage(ctx context.Context) ([]types.PackageSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := make(map[int]*types.PackageSale, len(s.packages))
	for id, pkg := range s.packages {
		byID[id] = &types.PackageSale{PackageID: id, Name: pkg.Name, TotalInvestment: decimal.Zero}
	}
	for _, p := range s.purchases {
		sale := byID[p.PackageID]
		sale.TotalSales++
		sale.TotalInvestment = sale.TotalInvestment.Add(p.InvestmentAmount)
	}
	sales := make([]types.PackageSale, 0, len(byID))
	for _, sale := range byID {
		sales = append(sales, *sale)
	}
	sort.Slice(sales, func(i, j int) bool {
		if cmp := sales[i].TotalInvestment.Cmp(sales[j].TotalInvestment); cmp != 0 {
			return cmp > 0
		}
		return sales[i].PackageID < sales[j].PackageID
	})
	return sales, nil
}

func (s *Store) Accrue(ctx context.Context) ([]types.AccrualCredit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[int]decimal.Decimal)
	for _, p := range s.purchases {
		if !p.IsActive {
			continue
		}
		totals[p.UserID] = totals[p.UserID].Add(s.packages[p.PackageID].EarningsPerDay)
	}
	credits := make([]types.AccrualCredit, 0, len(totals))
	for userID, total := range totals {
		user := s.users[userID]
		user.Wallet = user.Wallet.Add(total)
		s.users[userID] = user
		credits = append(credits, types.AccrualCredit{UserID: userID, Amount: total})
	}
	sort.Slice(credits, func(i, j int) bool { return credits[i].UserID < credits[j].UserID })
	return credits, nil
}

// PurchaseCount returns the number of recorded purchases.
func (s *Store) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}
