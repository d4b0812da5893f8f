package taxcalc

import (
	"testing"
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateGST(t *testing.T) {
	t.Run("charges fifteen percent", func(t *testing.T) {
		tax, err := CalculateGST(decimal.NewFromInt(100000))

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(15000)), "got %s", tax)
	})

	t.Run("zero supplies give zero tax", func(t *testing.T) {
		tax, err := CalculateGST(decimal.Zero)

		require.NoError(t, err)
		assert.True(t, tax.IsZero())
	})

	t.Run("rejects negative supplies", func(t *testing.T) {
		_, err := CalculateGST(decimal.NewFromInt(-1))

		assert.Error(t, err)
	})
}

func TestCalculateAnnualIncomeTax(t *testing.T) {
	t.Run("income inside exempt band", func(t *testing.T) {
		tax, bands, err := CalculateAnnualIncomeTax(decimal.NewFromInt(7000))

		require.NoError(t, err)
		assert.True(t, tax.IsZero())
		assert.Len(t, bands, 1)
	})

	t.Run("income at exempt threshold", func(t *testing.T) {
		tax, _, err := CalculateAnnualIncomeTax(decimal.NewFromInt(7200))

		require.NoError(t, err)
		assert.True(t, tax.IsZero())
	})

	t.Run("income in second band", func(t *testing.T) {
		// 9,000: first 7,200 exempt, 1,800 at 15% = 270
		tax, _, err := CalculateAnnualIncomeTax(decimal.NewFromInt(9000))

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(270)), "got %s", tax)
	})

	t.Run("income spanning all bands", func(t *testing.T) {
		// 30,000: 0 + 3,600*0.15 + 3,600*0.20 + 3,600*0.25 + 12,000*0.30
		//       = 540 + 720 + 900 + 3,600 = 5,760
		tax, bands, err := CalculateAnnualIncomeTax(decimal.NewFromInt(30000))

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(5760)), "got %s", tax)
		assert.Len(t, bands, 5)
	})

	t.Run("rejects negative income", func(t *testing.T) {
		_, _, err := CalculateAnnualIncomeTax(decimal.NewFromInt(-100))

		assert.Error(t, err)
	})
}

func TestCalculateMonthlyPAYE(t *testing.T) {
	t.Run("gross below exempt band is tax free", func(t *testing.T) {
		// 600 gross less 5% NASSIT = 570 taxable, inside the 600 exempt band
		result, err := CalculateMonthlyPAYE(decimal.NewFromInt(600))

		require.NoError(t, err)
		assert.True(t, result.PAYE.IsZero())
		assert.True(t, result.EmployeeNASSIT.Equal(decimal.NewFromInt(30)))
		assert.True(t, result.EmployerNASSIT.Equal(decimal.NewFromInt(60)))
		assert.True(t, result.NetPay.Equal(decimal.NewFromInt(570)))
	})

	t.Run("computes withholding on gross less employee NASSIT", func(t *testing.T) {
		// 2,000 gross: NASSIT 100, taxable 1,900
		// bands: 600 exempt, 300 @15% = 45, 300 @20% = 60, 300 @25% = 75, 400 @30% = 120
		// PAYE = 300
		result, err := CalculateMonthlyPAYE(decimal.NewFromInt(2000))

		require.NoError(t, err)
		assert.True(t, result.PAYE.Equal(decimal.NewFromInt(300)), "got %s", result.PAYE)
		assert.True(t, result.NetPay.Equal(decimal.NewFromInt(1600)))
		assert.True(t, result.TotalEmployerCost.Equal(decimal.NewFromInt(2200)))
	})

	t.Run("rejects negative gross", func(t *testing.T) {
		_, err := CalculateMonthlyPAYE(decimal.NewFromInt(-500))

		assert.Error(t, err)
	})
}

func TestCalculateCorporateTax(t *testing.T) {
	t.Run("standard assessment", func(t *testing.T) {
		result, err := CalculateCorporateTax(decimal.NewFromInt(200000), decimal.NewFromInt(1000000))

		require.NoError(t, err)
		assert.True(t, result.TaxDue.Equal(decimal.NewFromInt(50000)))
		assert.False(t, result.MinimumApplied)
	})

	t.Run("minimum turnover tax applies when higher", func(t *testing.T) {
		// standard: 10,000 * 25% = 2,500; minimum: 1,000,000 * 3% = 30,000
		result, err := CalculateCorporateTax(decimal.NewFromInt(10000), decimal.NewFromInt(1000000))

		require.NoError(t, err)
		assert.True(t, result.TaxDue.Equal(decimal.NewFromInt(30000)))
		assert.True(t, result.MinimumApplied)
	})

	t.Run("no turnover means standard only", func(t *testing.T) {
		result, err := CalculateCorporateTax(decimal.Zero, decimal.Zero)

		require.NoError(t, err)
		assert.True(t, result.TaxDue.IsZero())
		assert.False(t, result.MinimumApplied)
	})
}

func TestCalculateWithholding(t *testing.T) {
	t.Run("rent at ten percent", func(t *testing.T) {
		tax, err := CalculateWithholding(WithholdingRent, decimal.NewFromInt(5000))

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(500)))
	})

	t.Run("resident contractor at five point five percent", func(t *testing.T) {
		tax, err := CalculateWithholding(WithholdingContractorResident, decimal.NewFromInt(10000))

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(550)))
	})

	t.Run("royalties at twenty five percent", func(t *testing.T) {
		tax, err := CalculateWithholding(WithholdingRoyalties, decimal.NewFromInt(1000))

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(250)))
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := CalculateWithholding(WithholdingCategory("loans"), decimal.NewFromInt(100))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown withholding category")
	})
}

func TestLateCharges(t *testing.T) {
	dueDate := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)

	t.Run("nothing before due date", func(t *testing.T) {
		penalty, interest := LateCharges(decimal.NewFromInt(10000), dueDate, dueDate)

		assert.True(t, penalty.IsZero())
		assert.True(t, interest.IsZero())
	})

	t.Run("penalty plus daily interest after due date", func(t *testing.T) {
		asOf := dueDate.AddDate(0, 0, 30)

		penalty, interest := LateCharges(decimal.NewFromInt(10000), dueDate, asOf)

		assert.True(t, penalty.Equal(decimal.NewFromInt(1000)), "got %s", penalty)
		// 10,000 * 15% * 30/365
		expected := decimal.NewFromInt(10000).
			Mul(decimal.NewFromFloat(0.15)).
			Mul(decimal.NewFromInt(30)).
			Div(decimal.NewFromInt(365))
		assert.True(t, interest.Equal(expected), "got %s want %s", interest, expected)
	})

	t.Run("no charges on zero tax due", func(t *testing.T) {
		penalty, interest := LateCharges(decimal.Zero, dueDate, dueDate.AddDate(0, 1, 0))

		assert.True(t, penalty.IsZero())
		assert.True(t, interest.IsZero())
	})
}

func TestCalculateLiability(t *testing.T) {
	t.Run("gst", func(t *testing.T) {
		tax, err := CalculateLiability(filing.TaxTypeGST, decimal.NewFromInt(200000), LiabilityOptions{})

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(30000)))
	})

	t.Run("individual income tax", func(t *testing.T) {
		tax, err := CalculateLiability(filing.TaxTypeIncomeTax, decimal.NewFromInt(9000), LiabilityOptions{})

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(270)))
	})

	t.Run("corporate income tax", func(t *testing.T) {
		tax, err := CalculateLiability(filing.TaxTypeIncomeTax, decimal.NewFromInt(100000), LiabilityOptions{Corporate: true})

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(25000)))
	})

	t.Run("payroll", func(t *testing.T) {
		tax, err := CalculateLiability(filing.TaxTypePayrollPAYE, decimal.NewFromInt(2000), LiabilityOptions{})

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(300)))
	})

	t.Run("withholding requires category", func(t *testing.T) {
		_, err := CalculateLiability(filing.TaxTypeWithholding, decimal.NewFromInt(1000), LiabilityOptions{})

		assert.Error(t, err)
	})

	t.Run("withholding with category", func(t *testing.T) {
		tax, err := CalculateLiability(filing.TaxTypeWithholding, decimal.NewFromInt(1000), LiabilityOptions{Category: WithholdingDividends})

		require.NoError(t, err)
		assert.True(t, tax.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := CalculateLiability(filing.TaxTypeGST, decimal.NewFromInt(-5), LiabilityOptions{})

		assert.Error(t, err)
	})
}
