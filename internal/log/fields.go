package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldOperation   = "operation"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldUserID      = "user_id"
	FieldDepotID     = "depot_id"
	FieldExpenseID   = "expense_id"
	FieldCategoryID  = "category_id"
	FieldWidgetID    = "widget_id"
	FieldAmount      = "amount"
	FieldGQLOp       = "graphql_operation"
	FieldStatusCode  = "status_code"
	FieldCacheKey    = "cache_key"
	FieldOutcome     = "outcome"
	FieldPrefKey     = "pref_key"
	FieldSessionStep = "session_step"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentGraphQL   = "graphql"
	ComponentCache     = "cache"
	ComponentAuth      = "auth"
	ComponentSecure    = "secure_store"
	ComponentPrefs     = "prefs"
	ComponentSavings   = "savings"
	ComponentExpenses  = "expenses"
	ComponentDashboard = "dashboard"
)

// Operations defines standard operation names
const (
	OpQuery    = "query"
	OpMutate   = "mutate"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpRestore  = "restore"
	OpPersist  = "persist"
	OpValidate = "validate"
)
