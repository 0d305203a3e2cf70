// Package script embeds a JavaScript engine that loads its modules through
// the resolver and reports script failures as structured diagnostics.
package script

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"github.com/dl/fileinfo/internal/resolve"
)

// ErrRequireCycle is returned when a module is required while it is still
// being evaluated.
var ErrRequireCycle = errors.New("require cycle")

// Engine wraps a single goja runtime. It is not safe for concurrent use.
type Engine struct {
	vm       *goja.Runtime
	resolver *resolve.Resolver
	logger   *log.Logger

	// sources maps resource names to their text for diagnostics
	sources map[string]string
	// loading holds the full paths of modules still being evaluated
	loading map[string]bool

	files *FilePool
}

// maxCallStackSize bounds JS recursion so runaway scripts throw a
// RangeError instead of exhausting the Go stack.
const maxCallStackSize = 1024

// Option configures an Engine.
type Option func(*Engine)

// WithResolver sets the resolver used by RunFile and require.
func WithResolver(r *resolve.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine with a fresh runtime.
func New(opts ...Option) *Engine {
	e := &Engine{
		vm:      goja.New(),
		sources: make(map[string]string),
		loading: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = resolve.New()
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	e.vm.SetMaxCallStackSize(maxCallStackSize)
	e.files = NewFilePool(e.resolver)
	e.installConsole()
	e.installFilePool()
	return e
}

// Files returns the engine's keyed file pool, shared with the
// loadFile/removeFile globals.
func (e *Engine) Files() *FilePool {
	return e.files
}

// Close releases every file still held in the pool.
func (e *Engine) Close() error {
	return e.files.Close()
}

// Runtime exposes the underlying runtime.
func (e *Engine) Runtime() *goja.Runtime {
	return e.vm
}

// RunString evaluates src as a plain script named name.
func (e *Engine) RunString(name, src string) (goja.Value, error) {
	e.sources[name] = src
	return e.vm.RunScript(name, src)
}

// RunFile resolves path against baseDir, evaluates it as a module and
// returns its module.exports.
func (e *Engine) RunFile(path, baseDir string) (goja.Value, error) {
	return e.load(path, baseDir)
}

// moduleWrapper keeps the module body on the first line so line numbers in
// diagnostics match the file.
const (
	modulePrefix = "(function (module, exports, require, __dirname, __filename) {"
	moduleSuffix = "\n})"
)

func (e *Engine) load(path, baseDir string) (goja.Value, error) {
	d, err := e.resolver.Resolve(path, baseDir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	name := d.FullPath()
	dir := d.FolderPath()
	if e.loading[name] {
		return nil, fmt.Errorf("%w: %s", ErrRequireCycle, name)
	}
	e.loading[name] = true
	defer delete(e.loading, name)

	src := string(d.Buffer())
	e.sources[name] = src
	e.logger.Debug("loading module", "path", name)

	prg, err := goja.Compile(name, modulePrefix+src+moduleSuffix, false)
	if err != nil {
		return nil, err
	}
	fnv, err := e.vm.RunProgram(prg)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(fnv)
	if !ok {
		return nil, fmt.Errorf("module %s: wrapper is not a function", name)
	}

	module := e.vm.NewObject()
	exports := e.vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	_, err = fn(goja.Undefined(),
		module,
		exports,
		e.vm.ToValue(e.requireFrom(dir)),
		e.vm.ToValue(dir),
		e.vm.ToValue(name),
	)
	if err != nil {
		return nil, err
	}
	return module.Get("exports"), nil
}

// requireFrom returns a require function whose "./" and "../" paths are
// relative to dir.
func (e *Engine) requireFrom(dir string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)
		if goja.IsUndefined(arg) || goja.IsNull(arg) {
			panic(e.vm.NewTypeError("require: path must be a string"))
		}
		v, err := e.load(arg.String(), dir)
		if err != nil {
			var ex *goja.Exception
			if errors.As(err, &ex) {
				panic(ex)
			}
			panic(e.vm.NewGoError(err))
		}
		return v
	}
}
