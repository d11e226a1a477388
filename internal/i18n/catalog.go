// Package i18n resolves translation keys against YAML message catalogs.
//
// Catalogs are nested YAML maps; nested keys are addressed with dots
// ("UPLOAD_JSON.INVALID_JSON"). Messages may reference parameters as
// {{name}}. An unknown key resolves to the key itself and an unknown
// parameter is left in place.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

var ErrUnknownLocale = errors.New("unknown locale")

//go:embed locales/*.yaml
var locales embed.FS

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

type Catalog struct {
	locale   string
	messages map[string]string
}

func New(locale string, messages map[string]string) *Catalog {
	m := make(map[string]string, len(messages))
	for k, v := range messages {
		m[k] = v
	}
	return &Catalog{locale: locale, messages: m}
}

// Load returns the embedded catalog for locale.
func Load(locale string) (*Catalog, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	data, err := locales.ReadFile(path.Join("locales", locale+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownLocale, locale, strings.Join(Locales(), ", "))
		}
		return nil, err
	}

	messages, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("locale %s: %w", locale, err)
	}
	return New(locale, messages), nil
}

// Locales lists the embedded locales.
func Locales() []string {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Parse flattens a YAML catalog into dotted keys.
func Parse(data []byte) (map[string]string, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	out := make(map[string]string)
	if err := flatten("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case string:
			out[key] = val
		case nil:
			out[key] = ""
		case []any:
			return fmt.Errorf("key %s: lists are not supported", key)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return nil
}

func (c *Catalog) Locale() string { return c.locale }

// Instant resolves key and interpolates params into the message.
func (c *Catalog) Instant(key string, params map[string]any) string {
	msg, ok := c.messages[key]
	if !ok {
		msg = key
	}
	if len(params) == 0 {
		return msg
	}

	return placeholder.ReplaceAllStringFunc(msg, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok || v == nil {
			return m
		}
		return fmt.Sprint(v)
	})
}
