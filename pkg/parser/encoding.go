package parser

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is the code page log files are decoded with unless configured.
const DefaultEncoding = "windows-1251"

// LookupEncoding resolves an encoding label such as "windows-1251", "koi8-r"
// or "utf-8". WHATWG labels are tried first, then IANA names.
func LookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		label = DefaultEncoding
	}

	if enc, err := htmlindex.Get(label); err == nil {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return enc, nil
}

// SupportedEncodings lists the labels of the single-byte code pages plus utf-8.
func SupportedEncodings() []string {
	seen := map[string]bool{"utf-8": true}
	names := []string{"utf-8"}

	for _, enc := range charmap.All {
		name, err := htmlindex.Name(enc)
		if err != nil {
			name, err = ianaindex.IANA.Name(enc)
			if err != nil {
				continue
			}
		}
		name = strings.ToLower(name)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}
