package report

import "fmt"

// TemplateError represents an error parsing or executing a page template
type TemplateError struct {
	Template string
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %s: %v", e.Template, e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s: %s", e.Template, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Page    int
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error on page %d: %s: %v", e.Page, e.Message, e.Cause)
	}
	return fmt.Sprintf("render error on page %d: %s", e.Page, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// PageRangeError is returned for page numbers outside 1..TotalPages.
type PageRangeError struct {
	Page int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("page %d is outside 1..%d", e.Page, TotalPages)
}

// MappingError reports an inconsistent page table.
type MappingError struct {
	Page    int
	Message string
}

func (e *MappingError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("invalid page mapping for page %d: %s", e.Page, e.Message)
	}
	return fmt.Sprintf("invalid page mappings: %s", e.Message)
}
