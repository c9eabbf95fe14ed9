package core

import "strings"

// IsUncategorized reports whether the transaction still needs a manual
// category.
func IsUncategorized(t Transaction) bool {
	return strings.TrimSpace(t.UserCategory) == ""
}

// Uncategorized returns the transactions without a user category, in
// input order.
func Uncategorized(txns []Transaction) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if IsUncategorized(t) {
			out = append(out, t)
		}
	}
	return out
}

// ValidateCategory returns the option spelling of category, or
// ErrUnknownCategory when it is not one of CategoryOptions.
func ValidateCategory(category string) (string, error) {
	if strings.TrimSpace(category) == "" {
		return "", ErrEmptyCategory
	}
	c, ok := lookup(CategoryOptions, category)
	if !ok {
		return "", ErrUnknownCategory
	}
	return c, nil
}
