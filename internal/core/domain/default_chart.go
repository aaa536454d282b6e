package domain

// ChartTemplate describes one account of a seed chart. The parent is the
// account whose code is this code minus its last segment.
type ChartTemplate struct {
	Code            string
	Name            string
	AccountType     AccountType
	AcceptsPostings bool
	Description     string
}

// Cash account codes used when reconciling against the bank.
const (
	CashOnHandCode   = "1.1.01.001"
	BankCheckingCode = "1.1.01.002"
)

// DefaultChart returns the seed chart of a motorcycle rental business.
// Parents precede children.
func DefaultChart() []ChartTemplate {
	return []ChartTemplate{
		{Code: "1", Name: "Activo", AccountType: Asset},
		{Code: "1.1", Name: "Activo Corriente", AccountType: Asset},
		{Code: "1.1.01", Name: "Caja y Bancos", AccountType: Asset},
		{Code: CashOnHandCode, Name: "Caja", AccountType: Asset, AcceptsPostings: true, Description: "Efectivo en caja"},
		{Code: BankCheckingCode, Name: "Banco Cuenta Corriente", AccountType: Asset, AcceptsPostings: true, Description: "Cuenta corriente bancaria"},
		{Code: "1.1.02", Name: "Créditos por Ventas", AccountType: Asset},
		{Code: "1.1.02.001", Name: "Deudores por Alquiler", AccountType: Asset, AcceptsPostings: true},
		{Code: "1.2", Name: "Activo No Corriente", AccountType: Asset},
		{Code: "1.2.01", Name: "Bienes de Uso", AccountType: Asset},
		{Code: "1.2.01.001", Name: "Motocicletas", AccountType: Asset, AcceptsPostings: true, Description: "Flota de alquiler"},
		{Code: "1.2.01.002", Name: "Amortización Acumulada Motocicletas", AccountType: Asset, AcceptsPostings: true},
		{Code: "2", Name: "Pasivo", AccountType: Liability},
		{Code: "2.1", Name: "Pasivo Corriente", AccountType: Liability},
		{Code: "2.1.01", Name: "Deudas Comerciales", AccountType: Liability},
		{Code: "2.1.01.001", Name: "Proveedores", AccountType: Liability, AcceptsPostings: true},
		{Code: "2.1.02", Name: "Deudas Sociales", AccountType: Liability},
		{Code: "2.1.02.001", Name: "Sueldos a Pagar", AccountType: Liability, AcceptsPostings: true},
		{Code: "2.1.03", Name: "Deudas Fiscales", AccountType: Liability},
		{Code: "2.1.03.001", Name: "IVA Débito Fiscal", AccountType: Liability, AcceptsPostings: true},
		{Code: "3", Name: "Patrimonio Neto", AccountType: Equity},
		{Code: "3.1", Name: "Capital", AccountType: Equity},
		{Code: "3.1.01", Name: "Capital Social", AccountType: Equity},
		{Code: "3.1.01.001", Name: "Capital Suscripto", AccountType: Equity, AcceptsPostings: true},
		{Code: "3.2", Name: "Resultados", AccountType: Equity},
		{Code: "3.2.01", Name: "Resultados Acumulados", AccountType: Equity},
		{Code: "3.2.01.001", Name: "Resultados No Asignados", AccountType: Equity, AcceptsPostings: true},
		{Code: "4", Name: "Ingresos", AccountType: Income},
		{Code: "4.1", Name: "Ingresos Operativos", AccountType: Income},
		{Code: "4.1.01", Name: "Alquileres", AccountType: Income},
		{Code: "4.1.01.001", Name: "Alquiler de Motos", AccountType: Income, AcceptsPostings: true},
		{Code: "5", Name: "Egresos", AccountType: Expense},
		{Code: "5.1", Name: "Gastos Operativos", AccountType: Expense},
		{Code: "5.1.01", Name: "Gastos de Personal", AccountType: Expense},
		{Code: "5.1.01.001", Name: "Sueldos y Jornales", AccountType: Expense, AcceptsPostings: true},
		{Code: "5.1.02", Name: "Mantenimiento", AccountType: Expense},
		{Code: "5.1.02.001", Name: "Mantenimiento de Flota", AccountType: Expense, AcceptsPostings: true},
		{Code: "5.1.03", Name: "Amortizaciones", AccountType: Expense},
		{Code: "5.1.03.001", Name: "Amortización Motocicletas", AccountType: Expense, AcceptsPostings: true},
		{Code: "5.1.04", Name: "Gastos Bancarios", AccountType: Expense},
		{Code: "5.1.04.001", Name: "Comisiones Bancarias", AccountType: Expense, AcceptsPostings: true},
	}
}

// ParentCode returns code without its last segment, or "" for a root code.
func ParentCode(code string) string {
	for i := len(code) - 1; i >= 0; i-- {
		if code[i] == '.' {
			return code[:i]
		}
	}
	return ""
}
