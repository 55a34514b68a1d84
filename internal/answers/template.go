package answers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrTemplateMismatch is returned when an answer references a property the
// extractor did not produce. This is an authoring-time curation bug.
var ErrTemplateMismatch = errors.New("template references missing property")

var placeholder = regexp.MustCompile(`%\((\w+)\)s`)

// Render substitutes %(key)s placeholders in an answer text with the
// extracted property values.
func Render(text string, properties map[string]interface{}) (string, error) {
	var missing []string

	rendered := placeholder.ReplaceAllStringFunc(text, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		value, ok := properties[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return fmt.Sprint(value)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrTemplateMismatch, strings.Join(missing, ", "))
	}

	return rendered, nil
}
