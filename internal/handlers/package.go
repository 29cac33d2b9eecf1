package handlers

import (
	"net/http"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// PackageHandler serves the public catalog and purchases.
type PackageHandler struct {
	packageService  *services.PackageService
	purchaseService *services.PurchaseService
	logger          logrus.FieldLogger
}

func NewPackageHandler(
	packageService *services.PackageService,
	purchaseService *services.PurchaseService,
	logger logrus.FieldLogger,
) *PackageHandler {
	return &PackageHandler{
		packageService:  packageService,
		purchaseService: purchaseService,
		logger:          logger,
	}
}

func PackageRouter(
	r chi.Router,
	packageService *services.PackageService,
	purchaseService *services.PurchaseService,
	authMiddleware func(http.Handler) http.Handler,
	logger logrus.FieldLogger,
) {
	handler := NewPackageHandler(packageService, purchaseService, logger)

	r.Get("/packages", handler.ListPackages)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/buy-package", handler.BuyPackage)
		r.Get("/get-active-packages", handler.ListActivePurchases)
	})
}

// ListPackages returns the packages currently open for purchase.
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.packageService.ListActive(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (h *PackageHandler) BuyPackage(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, apperr.Unauthorized())
		return
	}

	var req BuyPackageRequest
	if err := decodeRequest(r, &req, "package_id and investment_amount are required"); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	receipt, err := h.purchaseService.Buy(r.Context(), userID, req.PackageID, *req.InvestmentAmount)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *PackageHandler) ListActivePurchases(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, apperr.Unauthorized())
		return
	}

	items, err := h.purchaseService.ListActiveForUser(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
