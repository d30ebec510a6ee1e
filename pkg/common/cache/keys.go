package cache

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultNamespace prefixes every key written by the item cache.
	DefaultNamespace = "item_store"
	// DefaultKeyTemplate renders as "<namespace>:<item_type>:<item_id>".
	DefaultKeyTemplate = "{namespace}:{item_type}:{item_id}"

	placeholderNamespace = "{namespace}"
	placeholderType      = "{item_type}"
	placeholderID        = "{item_id}"
)

// KeyFormatter renders cache keys from item identities.
type KeyFormatter struct {
	prefix   string
	template string
}

// NewKeyFormatter validates template and binds namespace into it.
// Empty arguments fall back to the defaults.
func NewKeyFormatter(namespace, template string) (*KeyFormatter, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if template == "" {
		template = DefaultKeyTemplate
	}
	if !strings.Contains(template, placeholderType) || !strings.Contains(template, placeholderID) {
		return nil, errors.Wrapf(ErrInvalidTemplate, "%q must contain %s and %s", template, placeholderType, placeholderID)
	}
	return &KeyFormatter{
		prefix:   namespace,
		template: strings.ReplaceAll(template, placeholderNamespace, namespace),
	}, nil
}

// MustKeyFormatter is like NewKeyFormatter but panics on an invalid template.
func MustKeyFormatter(namespace, template string) *KeyFormatter {
	f, err := NewKeyFormatter(namespace, template)
	if err != nil {
		panic(err)
	}
	return f
}

// Key renders the key for one identity.
func (f *KeyFormatter) Key(itemType, itemID string) string {
	return strings.NewReplacer(placeholderType, itemType, placeholderID, itemID).Replace(f.template)
}

// Namespace returns the namespace bound into the template.
func (f *KeyFormatter) Namespace() string {
	return f.prefix
}
