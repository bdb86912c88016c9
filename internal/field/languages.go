package field

import (
	"fmt"
	"regexp"

	"github.com/nao1215/sectxt/internal/model"
)

// languagesPattern matches a comma separated list of simple language tags
// such as "en, fr-CA". Language tags are case-insensitive.
var languagesPattern = regexp.MustCompile(`^(?i)[a-z]{1,8}(-[a-z]{1,8})?(\s*,\s*[a-z]{1,8}(-[a-z]{1,8})?)*$`)

func validateLanguages(line Line) Decision {
	if !languagesPattern.MatchString(line.Value) {
		return reject(model.CodeInvalidLanguages, fmt.Sprintf("malformed language list %q", line.Value))
	}
	return accept(line.Text)
}
