package page

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/strada-dev/strada/internal/errors"
)

// Reserved element ids inside server-rendered documents.
const (
	// DataBlockID marks the single script block carrying the page
	// descriptor.
	DataBlockID = "__strada_data__"

	// I18nBlockID marks the optional script block carrying the
	// translation payload.
	I18nBlockID = "__strada_i18n__"
)

var (
	dataBlockRe = regexp.MustCompile(`(?is)<script[^>]*\bid="` + DataBlockID + `"[^>]*>(.*?)</script>`)
	i18nBlockRe = regexp.MustCompile(`(?is)<script[^>]*\bid="` + I18nBlockID + `"[^>]*>(.*?)</script>`)
)

// ExtractDescriptor locates the reserved data block in a document and parses
// it into a Descriptor. Trailing semicolons after the JSON payload are
// tolerated and stripped.
func ExtractDescriptor(doc []byte) (*Descriptor, error) {
	m := dataBlockRe.FindSubmatch(doc)
	if m == nil {
		return nil, errors.New("E201")
	}

	payload := trimPayload(string(m[1]))
	var d Descriptor
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, errors.New("E202").Wrap(err)
	}
	if err := d.Validate(); err != nil {
		return nil, errors.New("E203").Wrap(err)
	}
	return &d, nil
}

// Translator resolves a translation key to its localized string.
type Translator func(key string) string

// IdentityTranslator returns lookup keys unchanged. It is the guaranteed
// fallback when a document carries no translation payload or the payload
// cannot be parsed.
func IdentityTranslator(key string) string { return key }

// ExtractTranslator builds a Translator from the document's embedded
// translation payload. The result is never nil: extraction or parse failure
// degrades to the identity translator.
func ExtractTranslator(doc []byte) Translator {
	m := i18nBlockRe.FindSubmatch(doc)
	if m == nil {
		return IdentityTranslator
	}

	var table map[string]string
	if err := json.Unmarshal([]byte(trimPayload(string(m[1]))), &table); err != nil || table == nil {
		return IdentityTranslator
	}
	return func(key string) string {
		if v, ok := table[key]; ok {
			return v
		}
		return key
	}
}

func trimPayload(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s
}
