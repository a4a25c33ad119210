package enum

// ── Order state machine ──

const (
	OrderStatusPending       = "PENDING"
	OrderStatusInPreparation = "IN_PREPARATION"
	OrderStatusCompleted     = "COMPLETED"
	OrderStatusCancelled     = "CANCELLED"
)

// ── Users ──

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
)

const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// ── Document collections ──

const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionWarehouse  = "warehouse"
	CollectionUsers      = "users"
	CollectionOrders     = "orders"
	CollectionEntries    = "accounting_entries"
	CollectionInvoices   = "invoices"
)

// ── Order events (WebSocket + kitchen publisher) ──

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

// ── Accounting ──

const (
	EntryTypeIncome  = "INCOME"
	EntryTypeExpense = "EXPENSE"
)

const (
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusPending = "PENDING"
	InvoiceStatusOverdue = "OVERDUE"
)

// ── Order store backends ──

const (
	OrderStoreLocal  = "local"
	OrderStoreRemote = "remote"
)
