package script

import (
	"fmt"

	"github.com/dop251/goja"
)

// Stringify serializes v with the runtime's global JSON.stringify. Values
// that JSON cannot represent, such as undefined or functions, give "".
func (e *Engine) Stringify(v goja.Value) (string, error) {
	res, err := e.callJSON("stringify", v)
	if err != nil {
		return "", err
	}
	if goja.IsUndefined(res) {
		return "", nil
	}
	return res.String(), nil
}

// Parse is the inverse of Stringify, using the global JSON.parse.
func (e *Engine) Parse(s string) (goja.Value, error) {
	return e.callJSON("parse", e.vm.ToValue(s))
}

func (e *Engine) callJSON(method string, arg goja.Value) (goja.Value, error) {
	jsonObj := e.vm.Get("JSON")
	if jsonObj == nil || goja.IsUndefined(jsonObj) {
		return nil, fmt.Errorf("global JSON object is missing")
	}
	obj := jsonObj.ToObject(e.vm)
	fn, ok := goja.AssertFunction(obj.Get(method))
	if !ok {
		return nil, fmt.Errorf("JSON.%s is not a function", method)
	}
	return fn(obj, arg)
}
