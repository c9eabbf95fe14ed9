package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
)

// Events sent to the page through the HX-Trigger header.
const (
	EventCategoriesSaved  = "categories:saved"
	EventSavingsAllocated = "savings:allocated"
	EventPlanSaved        = "plan:saved"
	EventStatementLoaded  = "statement:imported"
)

// HTMXResponseBuilder builds a response with optional HX-Trigger events.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a builder with status 200.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets an HTML body.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the response.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// messageHTML renders a message block of class kind with optional
// detail lines. All text is escaped.
func messageHTML(kind, message string, details ...string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="` + kind + `">`)
	sb.WriteString(template.HTMLEscapeString(message))
	if len(details) > 0 {
		sb.WriteString("<ul>")
		for _, d := range details {
			sb.WriteString("<li>" + template.HTMLEscapeString(d) + "</li>")
		}
		sb.WriteString("</ul>")
	}
	sb.WriteString("</div>")
	return sb.String()
}

// ErrorResponse renders message inside a div.error.
func ErrorResponse(statusCode int, message string, details ...string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(messageHTML("error", message, details...))
}

// SuccessResponse renders message inside a div.success.
func SuccessResponse(message string) *HTMXResponseBuilder {
	return NewHTMXResponse().BodyHTML(messageHTML("success", message))
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string, details ...string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message, details...)
}

func ConflictError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func TooManyRequestsError() *HTMXResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.")
}
