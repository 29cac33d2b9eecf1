package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/types"
	"github.com/sirupsen/logrus"
)

const salesReportPrefix = "reports/package-sales/"

// ReportUploader stores rendered reports.
type ReportUploader interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
}

// SalesSource supplies the per-package aggregate.
type SalesSource interface {
	SalesByPackage(ctx context.Context) ([]types.PackageSale, error)
}

// ReportExport locates an uploaded report.
type ReportExport struct {
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"object_key"`
	Rows      int    `json:"rows"`
}

type ReportService struct {
	sales    SalesSource
	uploader ReportUploader
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewReportService builds the exporter. uploader may be nil when no object
// storage is configured; exports then fail with a validation error.
func NewReportService(sales SalesSource, uploader ReportUploader, logger logrus.FieldLogger) *ReportService {
	return &ReportService{
		sales:    sales,
		uploader: uploader,
		now:      time.Now,
		logger:   logger,
	}
}

// ExportPackageSales renders the package sales aggregate as CSV and uploads it.
func (s *ReportService) ExportPackageSales(ctx context.Context) (ReportExport, error) {
	if s.uploader == nil {
		return ReportExport{}, apperr.Validation("report storage is not configured")
	}

	sales, err := s.sales.SalesByPackage(ctx)
	if err != nil {
		return ReportExport{}, apperr.Internal("Failed to fetch package sales", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"package_id", "name", "total_sales", "total_investment"})
	for _, sale := range sales {
		_ = w.Write([]string{
			strconv.Itoa(sale.PackageID),
			sale.Name,
			strconv.Itoa(sale.TotalSales),
			sale.TotalInvestment.StringFixed(2),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ReportExport{}, apperr.Internal("Failed to render report", err)
	}

	key := fmt.Sprintf("%s%s.csv", salesReportPrefix, s.now().UTC().Format("20060102T150405Z"))
	reader := bytes.NewReader(buf.Bytes())
	if err := s.uploader.Put(ctx, key, reader, reader.Size(), "text/csv"); err != nil {
		return ReportExport{}, apperr.Internal("Failed to upload report", err)
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.uploader.Bucket(),
		"key":    key,
		"rows":   len(sales),
	}).Info("package sales report exported")

	return ReportExport{Bucket: s.uploader.Bucket(), ObjectKey: key, Rows: len(sales)}, nil
}
