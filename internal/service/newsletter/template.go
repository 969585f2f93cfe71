package newsletter

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/ignite/assoc-admin/internal/domain"
)

// Renderer compiles newsletter templates.
type Renderer struct {
	engine *liquid.Engine
}

// NewRenderer creates a Renderer with the newsletter filters registered.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// {{ first_name | fallback: "member" }} also covers whitespace-only values.
	engine.RegisterFilter("fallback", func(value interface{}, def string) interface{} {
		switch v := value.(type) {
		case nil:
			return def
		case string:
			if strings.TrimSpace(v) == "" {
				return def
			}
			return v
		default:
			return v
		}
	})
	engine.RegisterFilter("titlecase", func(s string) string {
		words := strings.Fields(strings.ToLower(s))
		for i, w := range words {
			r := []rune(w)
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
		return strings.Join(words, " ")
	})

	return &Renderer{engine: engine}
}

// Compiled is a parsed subject and body pair.
type Compiled struct {
	subject *liquid.Template
	body    *liquid.Template
}

// Compile parses subject and body, reporting the first syntax error.
func (r *Renderer) Compile(subject, body string) (*Compiled, error) {
	st, err := r.engine.ParseString(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrValidation, err)
	}
	bt, err := r.engine.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: content: %v", ErrValidation, err)
	}
	return &Compiled{subject: st, body: bt}, nil
}

// Render produces the subject and HTML body for one recipient.
func (c *Compiled) Render(vars map[string]interface{}) (subject, body string, err error) {
	subject, serr := c.subject.RenderString(vars)
	if serr != nil {
		return "", "", fmt.Errorf("render subject: %w", serr)
	}
	body, berr := c.body.RenderString(vars)
	if berr != nil {
		return "", "", fmt.Errorf("render content: %w", berr)
	}
	return strings.TrimSpace(subject), body, nil
}

// Bindings are the template variables for one subscriber.
func Bindings(s domain.Subscriber, unsubscribeURL string) map[string]interface{} {
	return map[string]interface{}{
		"first_name":      s.FirstName,
		"last_name":       s.LastName,
		"email":           s.Email,
		"unsubscribe_url": unsubscribeURL,
	}
}
