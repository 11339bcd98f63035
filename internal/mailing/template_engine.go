// Package mailing provides the template engine for dynamic data injection
// using the Liquid template language for flow step personalization.
package mailing

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/osteele/liquid"
)

// TemplateService handles Liquid template rendering with caching.
// It satisfies flow.Renderer.
type TemplateService struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewTemplateService creates a new template service with custom filters
func NewTemplateService() *TemplateService {
	ts := &TemplateService{
		engine: liquid.NewEngine(),
	}
	ts.registerCustomFilters()
	return ts
}

// registerCustomFilters adds domain-specific Liquid filters
func (ts *TemplateService) registerCustomFilters() {
	// Default value filter: {{ first_name | default: "Friend" }}
	ts.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	// Capitalize first letter: {{ name | capitalize }}
	ts.engine.RegisterFilter("capitalize", func(s string) string {
		if len(s) == 0 {
			return s
		}
		return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
	})

	// Currency formatting: {{ lifetime_value | currency }}
	ts.engine.RegisterFilter("currency", func(value interface{}) string {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return v
			}
			f = parsed
		default:
			return fmt.Sprintf("%v", value)
		}
		return fmt.Sprintf("$%.2f", f)
	})

	// Extract domain from email: {{ email | email_domain }}
	ts.engine.RegisterFilter("email_domain", func(email string) string {
		parts := strings.Split(email, "@")
		if len(parts) == 2 {
			return parts[1]
		}
		return ""
	})

	// Show a timestamp as "X days ago": {{ last_order_date | relative_time }}
	ts.engine.RegisterFilter("relative_time", func(t interface{}) string {
		var timestamp time.Time
		switch v := t.(type) {
		case time.Time:
			timestamp = v
		case *time.Time:
			if v == nil {
				return ""
			}
			timestamp = *v
		case string:
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return v
			}
			timestamp = parsed
		default:
			return fmt.Sprintf("%v", t)
		}

		duration := time.Since(timestamp)
		switch {
		case duration < time.Minute:
			return "just now"
		case duration < time.Hour:
			mins := int(duration.Minutes())
			if mins == 1 {
				return "1 minute ago"
			}
			return fmt.Sprintf("%d minutes ago", mins)
		case duration < 24*time.Hour:
			hrs := int(duration.Hours())
			if hrs == 1 {
				return "1 hour ago"
			}
			return fmt.Sprintf("%d hours ago", hrs)
		default:
			days := int(duration.Hours() / 24)
			if days == 1 {
				return "yesterday"
			}
			return fmt.Sprintf("%d days ago", days)
		}
	})
}

// Parse compiles a template string and returns any syntax errors
func (ts *TemplateService) Parse(templateStr string) error {
	_, err := ts.engine.ParseString(templateStr)
	return err
}

// Render processes a template with the given bindings. Parsed templates are
// cached by their source text for repeated renders across a segment.
func (ts *TemplateService) Render(templateStr string, bindings map[string]interface{}) (string, error) {
	if cached, ok := ts.cache.Load(templateStr); ok {
		tpl := cached.(*liquid.Template)
		return tpl.RenderString(bindings)
	}

	tpl, err := ts.engine.ParseString(templateStr)
	if err != nil {
		log.Printf("[mailing.TemplateService] parse error: %v", err)
		return "", fmt.Errorf("parse template: %w", err)
	}
	ts.cache.Store(templateStr, tpl)

	result, err := tpl.RenderString(bindings)
	if err != nil {
		log.Printf("[mailing.TemplateService] render error: %v", err)
		return "", fmt.Errorf("render template: %w", err)
	}
	return result, nil
}

// ClearCache removes all cached templates
func (ts *TemplateService) ClearCache() {
	ts.cache = sync.Map{}
}
