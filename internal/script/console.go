package script

import (
	"strings"

	"github.com/dop251/goja"
)

// installConsole registers a console object whose methods write through
// the engine logger. log and info are printed regardless of level.
func (e *Engine) installConsole() {
	console := e.vm.NewObject()
	methods := map[string]func(msg string){
		"log":   func(msg string) { e.logger.Print(msg) },
		"info":  func(msg string) { e.logger.Print(msg) },
		"debug": func(msg string) { e.logger.Debug(msg) },
		"warn":  func(msg string) { e.logger.Warn(msg) },
		"error": func(msg string) { e.logger.Error(msg) },
	}
	for name, emit := range methods {
		console.Set(name, func(call goja.FunctionCall) goja.Value {
			emit(joinArgs(call.Arguments))
			return goja.Undefined()
		})
	}
	e.vm.Set("console", console)
}

func joinArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
