package script

import (
	"errors"
	"strings"

	"github.com/dop251/goja"
)

// Diagnostic describes a script failure.
type Diagnostic struct {
	Message      string
	ResourceName string
	LineNumber   int
	SourceLine   string
	// ScriptData is kept for shape; the engine attaches no data to scripts.
	ScriptData any
	// StackTrace is nil when the error carried no frames.
	StackTrace *string
}

// CaptureException builds a Diagnostic from an error returned by the
// engine. It returns nil for a nil error. Errors that did not come from a
// script only fill Message.
func (e *Engine) CaptureException(err error) *Diagnostic {
	if err == nil {
		return nil
	}

	var ex *goja.Exception
	var syntax *goja.CompilerSyntaxError
	switch {
	case errors.As(err, &ex):
		return e.fromException(ex)
	case errors.As(err, &syntax):
		d := &Diagnostic{Message: syntax.Message}
		if syntax.File != nil {
			pos := syntax.File.Position(syntax.Offset)
			d.ResourceName = pos.Filename
			d.LineNumber = pos.Line
			d.SourceLine = e.sourceLine(pos.Filename, pos.Line)
		}
		return d
	}
	return &Diagnostic{Message: err.Error()}
}

func (e *Engine) fromException(ex *goja.Exception) *Diagnostic {
	d := &Diagnostic{}
	if v := ex.Value(); v != nil {
		d.Message = v.String()
	} else {
		d.Message = ex.Error()
	}

	frames := ex.Stack()
	for i := range frames {
		pos := frames[i].Position()
		if pos.Line == 0 {
			continue // native frame
		}
		d.ResourceName = pos.Filename
		d.LineNumber = pos.Line
		d.SourceLine = e.sourceLine(pos.Filename, pos.Line)
		break
	}
	if len(frames) > 0 {
		st := ex.String()
		d.StackTrace = &st
	}
	return d
}

// sourceLine returns line n (1-based) of a known resource.
func (e *Engine) sourceLine(name string, n int) string {
	src, ok := e.sources[name]
	if !ok || n < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}

// HandleException turns err into a JS object with the keys message,
// resourceName, lineNum, sourceLine, scriptData and stackTrace, and returns
// it serialized by Stringify. A nil error gives "".
func (e *Engine) HandleException(err error) (string, error) {
	d := e.CaptureException(err)
	if d == nil {
		return "", nil
	}

	obj := e.vm.NewObject()
	var setErr error
	set := func(k string, v any) {
		if setErr == nil {
			setErr = obj.Set(k, v)
		}
	}
	set("message", d.Message)
	if d.ResourceName != "" {
		set("resourceName", d.ResourceName)
		set("lineNum", d.LineNumber)
		set("sourceLine", d.SourceLine)
		set("scriptData", goja.Null())
		if d.StackTrace != nil {
			set("stackTrace", *d.StackTrace)
		} else {
			set("stackTrace", goja.Null())
		}
	}
	if setErr != nil {
		return "", setErr
	}
	return e.Stringify(obj)
}
