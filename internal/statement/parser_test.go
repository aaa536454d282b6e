package statement_test

import (
	"testing"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/statement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"-1.234,56", "-1234.56"},
		{"$ 10.000,00", "10000"},
		{"0,5", "0.5"},
		{"1.000.000", "1000000"},
		{" 42 ", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := statement.ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "abc", "1,2,3", "12-3"} {
		_, err := statement.ParseAmount(bad)
		assert.ErrorIs(t, err, statement.ErrInvalidAmount, bad)
	}
}

func TestParse_SemicolonSingleAmount(t *testing.T) {
	raw := "Fecha;Descripción;Referencia;Importe;Saldo\n" +
		"05/06/2025;TRANSF JUAN PEREZ;OP-1;10.000,00;110.000,00\n" +
		"2025-06-07;DEBITO AUTOMATICO;;-1.234,56;108.765,44\n" +
		"Total;;;;\n"

	res, err := statement.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, ';', res.Delimiter)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Lines, 2)

	first := res.Lines[0]
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "TRANSF JUAN PEREZ", first.Description)
	assert.Equal(t, "OP-1", first.Reference)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("10000")))
	require.NotNil(t, first.RunningBalance)
	assert.True(t, first.RunningBalance.Equal(decimal.RequireFromString("110000")))

	second := res.Lines[1]
	assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), second.Date)
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("-1234.56")))
	assert.False(t, second.Reconciled)
}

func TestParse_CommaDebitCreditPair(t *testing.T) {
	raw := "FECHA,CONCEPTO,NUMERO,DEBITO,CREDITO\n" +
		"01/06/2025,Comision mantenimiento,,\"1.500,00\",\n" +
		"02/06/2025,Deposito,778,,\"25.000,50\"\n" +
		"basura final\n"

	res, err := statement.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, ',', res.Delimiter)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Lines, 2)
	assert.True(t, res.Lines[0].Amount.Equal(decimal.RequireFromString("-1500")))
	assert.True(t, res.Lines[1].Amount.Equal(decimal.RequireFromString("25000.50")))
	assert.Equal(t, "778", res.Lines[1].Reference)
	assert.Nil(t, res.Lines[1].RunningBalance)
}

func TestParse_DebitCreditHeadersWithImporte(t *testing.T) {
	raw := "Fecha;Detalle;Importe Débito;Importe Crédito\n" +
		"10/06/2025;Pago proveedor;500,00;\n"

	res, err := statement.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Columns[statement.RoleDebit])
	assert.Equal(t, 3, res.Columns[statement.RoleCredit])
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].Amount.Equal(decimal.RequireFromString("-500")))
}

func TestParse_MissingColumns(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		role statement.Role
	}{
		{"no date", "Descripcion;Importe\nx;1,00\n", statement.RoleDate},
		{"no description", "Fecha;Importe\n01/01/2025;1,00\n", statement.RoleDescription},
		{"no amount", "Fecha;Descripcion;Saldo\n01/01/2025;x;1,00\n", statement.RoleAmount},
		{"debit without credit", "Fecha;Descripcion;Debito\n01/01/2025;x;1,00\n", statement.RoleAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := statement.Parse(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, statement.ErrMissingColumn)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			var mc *statement.MissingColumnError
			require.ErrorAs(t, err, &mc)
			assert.Equal(t, tt.role, mc.Role)
		})
	}
}

func TestParse_InvalidAmountNamesRow(t *testing.T) {
	raw := "Fecha;Descripcion;Monto\n01/06/2025;ok;1,00\n02/06/2025;bad;N/A\n"

	_, err := statement.Parse(raw)
	require.Error(t, err)
	var ia *statement.InvalidAmountError
	require.ErrorAs(t, err, &ia)
	assert.Equal(t, 2, ia.Row)
	assert.Equal(t, "N/A", ia.Value)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := statement.Parse("  \n\n")
	assert.ErrorIs(t, err, statement.ErrEmptyStatement)
}
