package mailing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBasicSubstitution(t *testing.T) {
	ts := NewTemplateService()

	out, err := ts.Render("Hi {{ first_name }}, welcome back!", map[string]interface{}{
		"first_name": "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada, welcome back!", out)
}

func TestRenderDefaultFilter(t *testing.T) {
	ts := NewTemplateService()

	tests := []struct {
		name     string
		bindings map[string]interface{}
		want     string
	}{
		{"missing", map[string]interface{}{}, "Hi Friend"},
		{"empty", map[string]interface{}{"first_name": ""}, "Hi Friend"},
		{"present", map[string]interface{}{"first_name": "Ada"}, "Hi Ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ts.Render(`Hi {{ first_name | default: "Friend" }}`, tt.bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderCurrencyFilter(t *testing.T) {
	ts := NewTemplateService()

	out, err := ts.Render("You've spent {{ lifetime_value | currency }} with us", map[string]interface{}{
		"lifetime_value": 1234.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "You've spent $1234.50 with us", out)
}

func TestRenderEmailDomainFilter(t *testing.T) {
	ts := NewTemplateService()

	out, err := ts.Render("{{ email | email_domain }}", map[string]interface{}{
		"email": "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "example.com", out)
}

func TestRenderRelativeTimeFilter(t *testing.T) {
	ts := NewTemplateService()

	out, err := ts.Render("Last order: {{ last_order_date | relative_time }}", map[string]interface{}{
		"last_order_date": time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, "Last order: 2 days ago", out)
}

func TestRenderConditional(t *testing.T) {
	ts := NewTemplateService()

	tpl := "{% if email_subscribed %}See you soon{% else %}Resubscribe today{% endif %}"

	out, err := ts.Render(tpl, map[string]interface{}{"email_subscribed": true})
	require.NoError(t, err)
	assert.Equal(t, "See you soon", out)

	out, err = ts.Render(tpl, map[string]interface{}{"email_subscribed": false})
	require.NoError(t, err)
	assert.Equal(t, "Resubscribe today", out)
}

func TestRenderParseError(t *testing.T) {
	ts := NewTemplateService()

	_, err := ts.Render("{% if broken %}", map[string]interface{}{})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	ts := NewTemplateService()

	assert.NoError(t, ts.Parse("Hello {{ name }}"))
	assert.Error(t, ts.Parse("{% for x in %}"))
}
