//go:build js && wasm

package scenario

import (
	"fmt"
	"syscall/js"
)

// RunScenarioJS runs the scenario text in args[0] and returns its YAML report
func RunScenarioJS(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "error: checker panicked: " + fmt.Sprint(r)
		}
	}()
	if len(args) != 1 {
		return "error: expected a scenario"
	}
	return RunText(args[0].String())
}

// CheckFulfillsJS takes a hierarchy text, a subtype and a supertype
func CheckFulfillsJS(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "error: checker panicked: " + fmt.Sprint(r)
		}
	}()
	if len(args) != 3 {
		return "error: expected a hierarchy, a subtype and a supertype"
	}
	ok, err := FulfillsText(args[0].String(), args[1].String(), args[2].String())
	if err != nil {
		return "error: " + err.Error()
	}
	return ok
}
