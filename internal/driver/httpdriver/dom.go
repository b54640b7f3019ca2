package httpdriver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/specialistvlad/tutorburst/internal/driver"
)

// query resolves a selector against root. Text selectors match elements
// with a direct text node containing the text, and submit inputs whose
// value contains it.
func query(root *goquery.Selection, selector string) (*goquery.Selection, error) {
	sel, err := driver.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	if sel.Kind == driver.CSS {
		return root.Find(sel.Value), nil
	}
	return root.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		if isSubmitter(s) && goquery.NodeName(s) == "input" {
			return strings.Contains(s.AttrOr("value", ""), sel.Value)
		}
		return strings.Contains(ownText(s), sel.Value)
	}), nil
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}

func isSubmitter(s *goquery.Selection) bool {
	switch goquery.NodeName(s) {
	case "button":
		t := strings.ToLower(s.AttrOr("type", "submit"))
		return t == "submit"
	case "input":
		t := strings.ToLower(s.AttrOr("type", ""))
		return t == "submit" || t == "image"
	}
	return false
}

func hidden(s *goquery.Selection) bool {
	for n := s; n.Length() > 0; n = n.Parent() {
		if _, ok := n.Attr("hidden"); ok {
			return true
		}
		if goquery.NodeName(n) == "input" && strings.EqualFold(n.AttrOr("type", ""), "hidden") {
			return true
		}
		style := strings.ToLower(strings.ReplaceAll(n.AttrOr("style", ""), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

// formRequest serializes form the way a browser does for
// application/x-www-form-urlencoded, including the submitter's own name and
// value.
func (h *Handle) formRequest(ctx context.Context, form, submitter *goquery.Selection) (*http.Request, error) {
	values := url.Values{}
	form.Find("input[name], textarea[name], select[name]").Each(func(_ int, f *goquery.Selection) {
		if _, disabled := f.Attr("disabled"); disabled {
			return
		}
		name := f.AttrOr("name", "")
		switch goquery.NodeName(f) {
		case "textarea":
			values.Add(name, f.Text())
		case "select":
			opt := f.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = f.Find("option").First()
			}
			if opt.Length() > 0 {
				values.Add(name, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
			}
		default:
			switch strings.ToLower(f.AttrOr("type", "text")) {
			case "submit", "image", "button", "reset", "file":
				return
			case "checkbox", "radio":
				if _, checked := f.Attr("checked"); !checked {
					return
				}
				values.Add(name, f.AttrOr("value", "on"))
			default:
				values.Add(name, f.AttrOr("value", ""))
			}
		}
	})
	if name, ok := submitter.Attr("name"); ok && name != "" {
		values.Add(name, submitter.AttrOr("value", ""))
	}

	action, err := h.url.Parse(strings.TrimSpace(form.AttrOr("action", "")))
	if err != nil {
		return nil, fmt.Errorf("invalid form action: %w", err)
	}
	method := strings.ToUpper(form.AttrOr("method", http.MethodGet))

	if method == http.MethodPost {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, action.String(), strings.NewReader(values.Encode()))
		if err != nil {
			return nil, fmt.Errorf("failed to build form request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}

	action.RawQuery = values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, action.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build form request: %w", err)
	}
	return req, nil
}
