// Package extract turns scraped campus-site markup into normalized
// records. Each record kind is described by a declarative schema, a
// container selector, an item selector and a table of field rules, so
// individual fields stay testable without ad hoc traversal code.
package extract

import (
	"fmt"
	"strings"
	"time"

	"campusassist-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Field maps one named sub-location of an item block onto a record
// field. Set applies the field's decoder; absent markup yields the
// decoder's zero default, never an error.
type Field[T any] struct {
	Name     string
	Selector string
	// read an attribute instead of the node text
	Attr string
	Set  func(record *T, raw string)
}

// ListField collects every match of Selector under an item block.
type ListField[T any] struct {
	Name     string
	Selector string
	Set      func(record *T, values []string)
}

type schema[T any] struct {
	// root container for the record kind. When required is set, a
	// document without it raises ParseError: the caller must
	// disambiguate "site broken" from "empty result" via HTTP status.
	container string
	required  bool
	item      string
	fields    []Field[T]
	lists     []ListField[T]
	// post runs after the field table, for sub-records like
	// attachments that need their own traversal
	post func(sel *goquery.Selection, record *T, ordinal int)
}

func (s schema[T]) extract(doc *goquery.Document, kind string) ([]T, error) {
	container := doc.Find(s.container)
	if container.Length() == 0 {
		if s.required {
			return nil, &ParseError{Message: fmt.Sprintf(
				"no %s container in document (selector %q)", kind, s.container,
			)}
		}
		return []T{}, nil
	}

	out := []T{}
	container.Find(s.item).Each(func(ordinal int, sel *goquery.Selection) {
		var record T
		for _, f := range s.fields {
			f.Set(&record, rawValue(sel, f.Selector, f.Attr))
		}
		for _, f := range s.lists {
			values := []string{}
			sel.Find(f.Selector).Each(func(_ int, sub *goquery.Selection) {
				text := htmlutil.CleanText(sub.Text())
				if text != "" {
					values = append(values, text)
				}
			})
			f.Set(&record, values)
		}
		if s.post != nil {
			s.post(sel, &record, ordinal)
		}
		out = append(out, record)
	})
	return out, nil
}

func rawValue(sel *goquery.Selection, selector, attr string) string {
	target := sel
	if selector != "" {
		target = sel.Find(selector).First()
	}
	if attr != "" {
		return strings.TrimSpace(target.AttrOr(attr, ""))
	}
	return htmlutil.CleanText(target.Text())
}

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Message: "malformed document: " + err.Error()}
	}
	return doc, nil
}

// SyntheticId builds a stable fallback id for markup that carries
// none, unique within one extraction call via the ordinal.
func SyntheticId(namespace string, ordinal int) string {
	return fmt.Sprintf("%s-%d-%03d", namespace, time.Now().UnixMilli(), ordinal)
}
