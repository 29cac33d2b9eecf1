package handlers

import (
	"net/http"
	"strconv"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// AdminServices groups the services behind the administrator routes.
type AdminServices struct {
	Users     *services.UserService
	Packages  *services.PackageService
	Purchases *services.PurchaseService
	Wallets   *services.WalletService
	Reports   *services.ReportService
}

type AdminHandler struct {
	svc    AdminServices
	logger logrus.FieldLogger
}

func NewAdminHandler(svc AdminServices, logger logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// AdminRouter registers every administrator route behind auth and the admin
// check. /update-wallets lives outside /admin for client compatibility.
func AdminRouter(
	r chi.Router,
	svc AdminServices,
	authMiddleware func(http.Handler) http.Handler,
	logger logrus.FieldLogger,
) {
	handler := NewAdminHandler(svc, logger)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware, RequireAdmin(svc.Users, logger))

		r.Put("/update-wallets", handler.RunAccrual)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", handler.ListUsers)
			r.Put("/update-wallet/{id}", handler.UpdateWallet)
			r.Post("/add-package", handler.AddPackage)
			r.Get("/packages", handler.ListPackages)
			r.Get("/purchases", handler.ListPurchases)
			r.Get("/package-sales", handler.PackageSales)
			r.Post("/package-sales/export", handler.ExportPackageSales)
		})
	})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateWallet overwrites a user's balance with an absolute value.
func (h *AdminHandler) UpdateWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID < 1 {
		writeAppError(w, r, h.logger, apperr.Validation("Invalid user id"))
		return
	}

	var req UpdateWalletRequest
	if err := decodeRequest(r, &req, "Wallet must be a non-negative number"); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	user, err := h.svc.Wallets.SetWallet(r.Context(), userID, req.Wallet)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// RunAccrual credits every holder of an active purchase once, on demand.
func (h *AdminHandler) RunAccrual(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Wallets.RunAccrual(r.Context(), services.TriggerAdmin)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *AdminHandler) AddPackage(w http.ResponseWriter, r *http.Request) {
	var req AddPackageRequest
	if err := decodeRequest(r, &req, "Missing required package fields"); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	pkg, err := h.svc.Packages.Create(r.Context(), req.input())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

func (h *AdminHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.svc.Packages.ListAll(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (h *AdminHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.svc.Purchases.ListAll(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (h *AdminHandler) PackageSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.Purchases.SalesByPackage(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

// ExportPackageSales uploads the sales aggregate as CSV to object storage.
func (h *AdminHandler) ExportPackageSales(w http.ResponseWriter, r *http.Request) {
	export, err := h.svc.Reports.ExportPackageSales(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, export)
}
