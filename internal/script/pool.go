package script

import (
	"fmt"
	"math"

	"github.com/dop251/goja"

	"github.com/dl/fileinfo/internal/resolve"
)

// FilePool keeps resolved files under integer keys until they are removed.
// It is owned by one Engine and shares its lack of concurrency safety.
type FilePool struct {
	resolver *resolve.Resolver
	files    map[int64]*resolve.Descriptor
}

// NewFilePool creates an empty pool resolving through r.
func NewFilePool(r *resolve.Resolver) *FilePool {
	return &FilePool{
		resolver: r,
		files:    make(map[int64]*resolve.Descriptor),
	}
}

// Load resolves path and stores it under key, releasing any file the key
// held before.
func (p *FilePool) Load(key int64, path string) error {
	d, err := p.resolver.Resolve(path, "")
	if err != nil {
		return err
	}
	p.Remove(key)
	p.files[key] = d
	return nil
}

// Get returns the file stored under key, or nil.
func (p *FilePool) Get(key int64) *resolve.Descriptor {
	return p.files[key]
}

// Remove releases the file stored under key. Unknown keys are ignored.
func (p *FilePool) Remove(key int64) error {
	d, ok := p.files[key]
	if !ok {
		return nil
	}
	delete(p.files, key)
	return d.Close()
}

// Len returns the number of stored files.
func (p *FilePool) Len() int {
	return len(p.files)
}

// Close releases every stored file.
func (p *FilePool) Close() error {
	var first error
	for key := range p.files {
		if err := p.Remove(key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// installFilePool exposes loadFile(key, path) and removeFile(key).
func (e *Engine) installFilePool() {
	e.vm.Set("loadFile", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) != 2 {
			panic(e.vm.NewTypeError("loadFile: expected 2 arguments, got %d", len(call.Arguments)))
		}
		key := e.fileKey("loadFile", call.Arguments[0])
		pathArg := call.Arguments[1]
		if _, ok := pathArg.Export().(string); !ok {
			panic(e.vm.NewTypeError("loadFile: path must be a string"))
		}
		if err := e.files.Load(key, pathArg.String()); err != nil {
			panic(e.vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	e.vm.Set("removeFile", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) != 1 {
			panic(e.vm.NewTypeError("removeFile: expected 1 argument, got %d", len(call.Arguments)))
		}
		if err := e.files.Remove(e.fileKey("removeFile", call.Arguments[0])); err != nil {
			panic(e.vm.NewGoError(err))
		}
		return goja.Undefined()
	})
}

// fileKey accepts integral numbers only.
func (e *Engine) fileKey(fn string, v goja.Value) int64 {
	switch k := v.Export().(type) {
	case int64:
		return k
	case float64:
		if k == math.Trunc(k) && !math.IsInf(k, 0) {
			return int64(k)
		}
	}
	panic(e.vm.NewTypeError(fmt.Sprintf("%s: key must be an integer", fn)))
}
