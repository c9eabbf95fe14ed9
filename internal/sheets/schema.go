package sheets

// Sheet names.
const (
	IncomeSheet  = "income"
	BudgetSheet  = "budget"
	BankSheet    = "bank_transactions"
	CardSheet    = "credit_card"
	SavingsSheet = "savings"
)

// Column names shared by several sheets.
const (
	ColMonthYear   = "month_year"
	ColPerson      = "person"
	ColCategory    = "category"
	ColIncome      = "income"
	ColBudgeted    = "budgeted"
	ColAccount     = "account_number"
	ColCardNumber  = "card_number"
	ColCardName    = "card_name"
	ColTimestamp   = "txn_timestamp"
	ColAmount      = "amount"
	ColBalance     = "current_balance"
	ColType        = "type"
	ColReference   = "reference"
	ColMerchant    = "merchant"
	ColCategoryIco = "category_icon_name"
	ColBankName    = "bank_name"
	ColNotes       = "notes"
	ColDate        = "date"
	ColTime        = "time"
	ColMyCategory  = "my_category"
	ColDescription = "description"
	ColAllocatedTo = "allocated_to"
)

// BankImportColumns is the exact column list of an uploaded bank
// statement.
var BankImportColumns = []string{
	ColAccount, ColTimestamp, ColAmount, ColBalance, ColType, ColReference,
	ColMerchant, ColCategoryIco, ColCategory, ColBankName, ColNotes,
}

// CardImportColumns is the exact column list of an uploaded card
// statement.
var CardImportColumns = []string{
	ColCardNumber, ColCardName, ColTimestamp, ColAmount, ColType, ColMerchant,
	ColCategoryIco, ColCategory, ColNotes,
}

// importExtras are appended to every imported row.
var importExtras = []string{ColPerson, ColDate, ColTime, ColMyCategory}

// Columns returns the full header of a known sheet, or nil.
func Columns(sheet string) []string {
	switch sheet {
	case IncomeSheet:
		return []string{ColMonthYear, ColPerson, ColCategory, ColIncome}
	case BudgetSheet:
		return []string{ColMonthYear, ColPerson, ColCategory, ColBudgeted}
	case BankSheet:
		return concat(BankImportColumns, importExtras)
	case CardSheet:
		return concat(CardImportColumns, importExtras)
	case SavingsSheet:
		return []string{ColTimestamp, ColDescription, ColAmount, ColAllocatedTo}
	}
	return nil
}

// AllSheets lists every sheet the application reads or writes.
func AllSheets() []string {
	return []string{IncomeSheet, BudgetSheet, BankSheet, CardSheet, SavingsSheet}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
