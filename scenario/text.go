package scenario

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cottand/slottype/hierarchy"
	"github.com/cottand/slottype/hierdef"
	"github.com/cottand/slottype/typeexpr"
)

// RunText runs the scenario in content and renders its report as YAML. Failures to
// parse or set up the scenario are rendered as an error document.
func RunText(content string) string {
	s, err := Parse([]byte(content))
	if err != nil {
		return errorDoc(err)
	}
	report, err := s.Run()
	if err != nil {
		return errorDoc(err)
	}
	out, err := yaml.Marshal(report)
	if err != nil {
		return errorDoc(err)
	}
	return string(out)
}

// FulfillsText loads the hierarchy in hierarchyText, in the format of hierarchy
// files, and reports whether sub fulfills super
func FulfillsText(hierarchyText, sub, super string) (bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(hierarchyText), &doc); err != nil {
		return false, err
	}
	def := hierarchy.Definition{}
	if doc.Kind != 0 {
		var err error
		if def, err = hierdef.DecodeNode(&doc); err != nil {
			return false, err
		}
	}
	h, err := hierarchy.New(def)
	if err != nil {
		return false, err
	}
	exprs, err := typeexpr.ParseAll(sub, super)
	if err != nil {
		return false, err
	}
	return h.Fulfills(exprs[0], exprs[1])
}

func errorDoc(err error) string {
	out, marshalErr := yaml.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return fmt.Sprintf("error: %q\n", errors.Wrap(err, marshalErr.Error()).Error())
	}
	return string(out)
}
