package portal

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/aula-cli/internal/domain"
	"golang.org/x/net/html"
)

type loginForm struct {
	Action *url.URL
	Fields url.Values
	// inputs lists every named input, including those without a value.
	inputs map[string]struct{}
}

// parseLoginForm extracts the first form's action and every input carrying
// both a name and a value. The action is resolved against base.
func parseLoginForm(body []byte, base *url.URL) (loginForm, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return loginForm{}, fmt.Errorf("%w: parse login page: %v", domain.ErrProtocol, err)
	}

	form := loginForm{Fields: url.Values{}, inputs: map[string]struct{}{}}
	var action string
	var foundForm bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "form":
				if !foundForm {
					action, foundForm = attr(n, "action")
				}
			case "input":
				name, hasName := attr(n, "name")
				if hasName && name != "" {
					form.inputs[name] = struct{}{}
					if value, hasValue := attr(n, "value"); hasValue {
						form.Fields.Set(name, value)
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if !foundForm || strings.TrimSpace(action) == "" {
		return loginForm{}, errNoForm
	}

	resolved, err := base.Parse(strings.TrimSpace(action))
	if err != nil {
		return loginForm{}, fmt.Errorf("%w: parse form action %q: %v", domain.ErrProtocol, action, err)
	}
	form.Action = resolved

	return form, nil
}

// withCredentials overrides the credential inputs present on the page.
func (f loginForm) withCredentials(values map[string]string) url.Values {
	out := url.Values{}
	for key, vals := range f.Fields {
		out[key] = append([]string(nil), vals...)
	}
	for key, value := range values {
		if _, ok := f.inputs[key]; ok {
			out.Set(key, value)
		}
	}
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
