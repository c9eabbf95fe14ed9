package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSheet      = "sheet"
	FieldPosition   = "position"
	FieldPerson     = "person"
	FieldMonth      = "month"
	FieldCategory   = "category"
	FieldGoal       = "goal"
	FieldRows       = "rows"
	FieldBatchID    = "batch_id"
	FieldSheetsRef  = "sheets_ref"
)

// Component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
	ComponentImport    = "import"
	ComponentSavings   = "savings"
	ComponentBudget    = "budget"
	ComponentCategory  = "categorize"
	ComponentRateLimit = "rate_limit"
	ComponentCLI       = "cli"
)

// Operation names
const (
	OpRead     = "read"
	OpAppend   = "append"
	OpUpdate   = "update"
	OpSync     = "sync"
	OpValidate = "validate"
	OpRender   = "render"
	OpImport   = "import"
	OpAllocate = "allocate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields accumulates key/value pairs for slog.
type Fields []any

func NewFields() Fields { return Fields{} }

func (f Fields) With(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) WithComponent(component string) Fields {
	return f.With(FieldComponent, component)
}

func (f Fields) WithOperation(op string) Fields {
	return f.With(FieldOperation, op)
}

func (f Fields) WithSheet(sheet string) Fields {
	return f.With(FieldSheet, sheet)
}

// WithError adds the error message when err is not nil.
func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return f.With(FieldError, err.Error())
}

func (f Fields) WithHTTPRequest(method, path, query, userAgent string) Fields {
	return f.With(FieldMethod, method).
		With(FieldPath, path).
		With(FieldQuery, query).
		With(FieldUserAgent, userAgent)
}

func (f Fields) WithHTTPResponse(statusCode int, durationMs int64) Fields {
	return f.With(FieldStatusCode, statusCode).With(FieldDuration, durationMs)
}
