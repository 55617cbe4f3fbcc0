package render

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasttemplate"
)

// DefaultNamePattern builds service names from the prefix, the service kind,
// and a stable suffix.
const DefaultNamePattern = "${prefix}-${service}-${suffix}"

// DefaultPrefix is used when no prefix is configured.
const DefaultPrefix = "tf-gen"

const suffixLength = 8

// suffixNamespace scopes name-based suffixes to this generator.
var suffixNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("tfgen.resource-suffix"))

// Namer expands the service naming pattern. Placeholders are ${prefix},
// ${service}, and ${suffix}.
type Namer struct {
	prefix   string
	template *fasttemplate.Template
}

// NewNamer compiles pattern. An empty prefix or pattern selects the default.
func NewNamer(prefix, pattern string) (*Namer, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultNamePattern
	}
	tmpl, err := fasttemplate.NewTemplate(pattern, "${", "}")
	if err != nil {
		return nil, fmt.Errorf("render: compile name pattern %q: %w", pattern, err)
	}
	return &Namer{prefix: prefix, template: tmpl}, nil
}

// Name returns the resource name for component, e.g. "tf-gen-kafka-qhxkzbma".
func (n *Namer) Name(component string) string {
	service := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(component)), "_", "-")
	return n.template.ExecuteString(map[string]interface{}{
		"prefix":  n.prefix,
		"service": service,
		"suffix":  Suffix(n.prefix+"-"+service, suffixLength),
	})
}

// Suffix derives a lowercase alphabetic string from seed. The same seed always
// yields the same suffix, so regenerated files keep their resource names.
func Suffix(seed string, length int) string {
	if length <= 0 {
		return ""
	}
	id := uuid.NewSHA1(suffixNamespace, []byte(seed))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte('a' + id[i%len(id)]%26)
	}
	return b.String()
}
