package services

import (
	"fmt"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(14,2).
const moneyScale = 2

var moneyLimit = decimal.New(1, 14-moneyScale)

// checkMoney rejects values the money columns would round or overflow.
func checkMoney(field string, v decimal.Decimal) *apperr.Error {
	if !v.Equal(v.Round(moneyScale)) {
		return apperr.Validation(fmt.Sprintf("%s must have at most %d decimal places", field, moneyScale))
	}
	if v.Abs().GreaterThanOrEqual(moneyLimit) {
		return apperr.Validation(fmt.Sprintf("%s is out of range", field))
	}
	return nil
}
