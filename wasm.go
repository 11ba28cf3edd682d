//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/slottype/scenario"
)

func main() {
	js.Global().Set("RunScenario", js.FuncOf(scenario.RunScenarioJS))
	js.Global().Set("CheckFulfills", js.FuncOf(scenario.CheckFulfillsJS))

	// wait indefinitely so that Go does not terminate execution
	// and the functions remain available
	<-make(chan struct{})
}
