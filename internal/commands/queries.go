package commands

// ---------- User queries ----------

// GetUserQuery fetches a single user, subject to the self-or-admin rule.
type GetUserQuery struct {
	UserID    string
	ActorID   string
	ActorRole string
}

// ---------- Payment queries ----------

// ListUserPaymentsQuery fetches all charges for one resident, subject
// to the self-or-admin rule.
type ListUserPaymentsQuery struct {
	ResidentID string
	ActorID    string
	ActorRole  string
}

// ---------- Expense queries ----------

// ListExpensesQuery filters the expense listing. Month is "YYYY-MM";
// Category "all" or empty means no category filter; Search matches
// description and vendor.
type ListExpensesQuery struct {
	Month    string
	Category string
	Search   string
}

// ExpenseStatsQuery selects the year to aggregate; zero means the
// current year.
type ExpenseStatsQuery struct {
	Year int
}
