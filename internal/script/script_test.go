package script

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/dl/fileinfo/internal/resolve"
)

func scriptDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestStringify(t *testing.T) {
	e := New()
	v, err := e.RunString("obj.js", `({a: 1, b: [true, "x"], c: undefined})`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := e.Stringify(v)
	if err != nil {
		t.Fatalf("Stringify() error: %v", err)
	}
	if want := `{"a":1,"b":[true,"x"]}`; got != want {
		t.Errorf("Stringify() = %q, want %q", got, want)
	}
}

func TestStringify_Undefined(t *testing.T) {
	e := New()
	v, err := e.RunString("undef.js", `undefined`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.Stringify(v)
	if err != nil {
		t.Fatalf("Stringify() error: %v", err)
	}
	if got != "" {
		t.Errorf("Stringify(undefined) = %q, want empty", got)
	}
}

func TestParse(t *testing.T) {
	e := New()
	v, err := e.Parse(`{"workParam": 42, "list": [1, 2]}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	obj := v.ToObject(e.Runtime())
	if got := obj.Get("workParam").ToInteger(); got != 42 {
		t.Errorf("workParam = %d, want 42", got)
	}

	back, err := e.Stringify(v)
	if err != nil {
		t.Fatal(err)
	}
	if back != `{"workParam":42,"list":[1,2]}` {
		t.Errorf("round trip = %q", back)
	}
}

func TestParse_Invalid(t *testing.T) {
	e := New()
	_, err := e.Parse(`{not json`)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	d := e.CaptureException(err)
	if d == nil || !strings.Contains(d.Message, "SyntaxError") {
		t.Errorf("diagnostic = %+v, want SyntaxError message", d)
	}
}

func TestRunFile_ModuleContext(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"sub-modules/subModuleContext.js": `
var SubModuleContext = function () {
    this.checkModuleContext = function (workParam) {
        return {
            "workParam": workParam,
            "__dirname": __dirname,
            "__filename": __filename
        };
    };
};
module.exports = SubModuleContext;
`,
		"main.js": `
var Ctx = require("./sub-modules/subModuleContext.js");
module.exports = new Ctx().checkModuleContext("work");
`,
	})

	e := New()
	v, err := e.RunFile("./main.js", dir+"/")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	s, err := e.Stringify(v)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(s), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", s, err)
	}
	want := map[string]string{
		"workParam":  "work",
		"__dirname":  dir + "/sub-modules/",
		"__filename": dir + "/sub-modules/subModuleContext.js",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("module context mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFile_RequireParent(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"lib/answer.js": `module.exports = 42;`,
		"app/index.js":  `module.exports = require("../lib/answer.js") + 1;`,
	})

	e := New()
	v, err := e.RunFile(filepath.Join(dir, "app", "index.js"), "")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if got := v.ToInteger(); got != 43 {
		t.Errorf("exports = %d, want 43", got)
	}
}

func TestRunFile_NotFound(t *testing.T) {
	e := New()
	_, err := e.RunFile("./nope.js", t.TempDir()+"/")
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRunFile_RequireMissingThrows(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"main.js": `
var caught = null;
try {
    require("./missing.js");
} catch (e) {
    caught = String(e);
}
module.exports = caught;
`,
	})

	e := New()
	v, err := e.RunFile(filepath.Join(dir, "main.js"), "")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if !strings.Contains(v.String(), "file not found") {
		t.Errorf("caught = %q, want a not-found error", v.String())
	}
}

func TestCaptureException_Thrown(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"boom.js": "var x = 1;\nthrow new Error(\"boom\");\n",
	})

	e := New()
	_, err := e.RunFile(filepath.Join(dir, "boom.js"), "")
	if err == nil {
		t.Fatal("expected error")
	}

	d := e.CaptureException(err)
	if d == nil {
		t.Fatal("CaptureException() = nil")
	}
	if d.Message != "Error: boom" {
		t.Errorf("Message = %q, want %q", d.Message, "Error: boom")
	}
	if d.ResourceName != filepath.Join(dir, "boom.js") {
		t.Errorf("ResourceName = %q", d.ResourceName)
	}
	if d.LineNumber != 2 {
		t.Errorf("LineNumber = %d, want 2", d.LineNumber)
	}
	if d.SourceLine != `throw new Error("boom");` {
		t.Errorf("SourceLine = %q", d.SourceLine)
	}
	if d.StackTrace == nil || !strings.Contains(*d.StackTrace, "boom") {
		t.Errorf("StackTrace = %v, want trace mentioning boom", d.StackTrace)
	}
}

func TestCaptureException_SyntaxError(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"bad.js": "var ok = 1;\nvar = ;\n",
	})

	e := New()
	_, err := e.RunFile(filepath.Join(dir, "bad.js"), "")
	if err == nil {
		t.Fatal("expected compile error")
	}
	d := e.CaptureException(err)
	if d == nil || d.Message == "" {
		t.Fatalf("diagnostic = %+v, want a message", d)
	}
}

func TestCaptureException_Nil(t *testing.T) {
	if d := New().CaptureException(nil); d != nil {
		t.Errorf("CaptureException(nil) = %+v, want nil", d)
	}
}

func TestCaptureException_GoError(t *testing.T) {
	d := New().CaptureException(errors.New("plain failure"))
	want := &Diagnostic{Message: "plain failure"}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("diagnostic mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleException(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"throws.js": "throw new TypeError(\"bad type\");",
	})

	e := New()
	_, err := e.RunFile(filepath.Join(dir, "throws.js"), "")
	if err == nil {
		t.Fatal("expected error")
	}

	s, err := e.HandleException(err)
	if err != nil {
		t.Fatalf("HandleException() error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(s), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", s, err)
	}
	for _, key := range []string{"message", "resourceName", "lineNum", "sourceLine", "scriptData", "stackTrace"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, s)
		}
	}
	if got["message"] != "TypeError: bad type" {
		t.Errorf("message = %v", got["message"])
	}
	if got["scriptData"] != nil {
		t.Errorf("scriptData = %v, want null", got["scriptData"])
	}
}

func TestHandleException_MessageOnly(t *testing.T) {
	s, err := New().HandleException(errors.New("no script"))
	if err != nil {
		t.Fatal(err)
	}
	if s != `{"message":"no script"}` {
		t.Errorf("HandleException() = %q", s)
	}
}

func TestRunFile_RequireCycle(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"a.js": `module.exports = require("./b.js");`,
		"b.js": `module.exports = require("./a.js");`,
	})

	e := New()
	_, err := e.RunFile(filepath.Join(dir, "a.js"), "")
	if err == nil {
		t.Fatal("expected error for a require cycle")
	}
	if !strings.Contains(err.Error(), "require cycle") {
		t.Errorf("err = %v, want a require cycle error", err)
	}
}

func TestRunFile_RequireCycleCatchable(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"main.js": `
var caught = null;
try {
    require("./main.js");
} catch (e) {
    caught = String(e);
}
module.exports = caught;
`,
	})

	e := New()
	v, err := e.RunFile(filepath.Join(dir, "main.js"), "")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if !strings.Contains(v.String(), "require cycle") {
		t.Errorf("caught = %q, want a require cycle error", v.String())
	}
}

func TestRunFile_RequireAgainAfterLoad(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"lib.js":  `module.exports = 1;`,
		"main.js": `module.exports = require("./lib.js") + require("./lib.js");`,
	})

	e := New()
	v, err := e.RunFile(filepath.Join(dir, "main.js"), "")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if got := v.ToInteger(); got != 2 {
		t.Errorf("exports = %d, want 2", got)
	}
}

func TestConsole_InModule(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"sub-modules/subModuleContext.js": `
module.exports = {
    hasConsole: typeof console == "object",
    hasLog: typeof console.log == "function"
};
console.log("loaded", 1);
`,
	})

	var buf bytes.Buffer
	e := New(WithLogger(log.New(&buf)))
	v, err := e.RunFile("./sub-modules/subModuleContext.js", dir+"/")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	s, err := e.Stringify(v)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"hasConsole":true,"hasLog":true}`; s != want {
		t.Errorf("exports = %s, want %s", s, want)
	}
	if !strings.Contains(buf.String(), "loaded 1") {
		t.Errorf("log output = %q, want it to contain %q", buf.String(), "loaded 1")
	}
}

func TestConsole_Levels(t *testing.T) {
	var buf bytes.Buffer
	e := New(WithLogger(log.New(&buf)))
	if _, err := e.RunString("levels.js", `
console.debug("hidden");
console.warn("careful");
console.error("broken");
`); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message printed at default level: %q", out)
	}
	for _, want := range []string{"careful", "broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output = %q, want it to contain %q", out, want)
		}
	}
}

func TestFilePool(t *testing.T) {
	dir := scriptDir(t, map[string]string{"data.txt": "payload"})
	path := filepath.Join(dir, "data.txt")

	e := New()
	pool := e.Files()
	if err := pool.Load(1, path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	d := pool.Get(1)
	if d == nil {
		t.Fatal("Get(1) = nil after Load")
	}
	if got := string(d.Buffer()); got != "payload" {
		t.Errorf("Buffer() = %q, want %q", got, "payload")
	}

	if err := pool.Remove(1); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := pool.Remove(1); err != nil {
		t.Fatalf("second Remove() error: %v", err)
	}
	if pool.Get(1) != nil || pool.Len() != 0 {
		t.Errorf("pool still holds key 1 (len %d)", pool.Len())
	}
	if d.Buffer() != nil {
		t.Error("removed descriptor still exposes its buffer")
	}
}

func TestFilePool_LoadMissing(t *testing.T) {
	e := New()
	err := e.Files().Load(1, filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if e.Files().Len() != 0 {
		t.Error("failed Load stored a file")
	}
}

func TestFilePool_ReloadReplaces(t *testing.T) {
	dir := scriptDir(t, map[string]string{"a.txt": "a", "b.txt": "b"})

	e := New()
	pool := e.Files()
	if err := pool.Load(7, filepath.Join(dir, "a.txt")); err != nil {
		t.Fatal(err)
	}
	first := pool.Get(7)
	if err := pool.Load(7, filepath.Join(dir, "b.txt")); err != nil {
		t.Fatal(err)
	}
	if first.Buffer() != nil {
		t.Error("replaced descriptor was not released")
	}
	if got := string(pool.Get(7).Buffer()); got != "b" {
		t.Errorf("Buffer() = %q, want %q", got, "b")
	}
}

func TestEngine_CloseReleasesFiles(t *testing.T) {
	dir := scriptDir(t, map[string]string{"data.txt": "x"})

	e := New()
	if err := e.Files().Load(1, filepath.Join(dir, "data.txt")); err != nil {
		t.Fatal(err)
	}
	d := e.Files().Get(1)
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if e.Files().Len() != 0 || d.Buffer() != nil {
		t.Error("Close did not release pooled files")
	}
}

func TestRemoveFile_FromScript(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"data.txt": "payload",
		"main.js": `
loadFile(1, __dirname + "data.txt");
removeFile(1);
removeFile(1);

function throws(fn) {
    try {
        fn();
        return false;
    } catch (e) {
        return e instanceof TypeError;
    }
}
module.exports = {
    noArgs: throws(function () { removeFile(); }),
    extraArg: throws(function () { removeFile(1, "x"); }),
    arrayKey: throws(function () { removeFile(["x"]); }),
    fractionKey: throws(function () { removeFile(1.5); })
};
`,
	})

	e := New()
	v, err := e.RunFile(filepath.Join(dir, "main.js"), "")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	s, err := e.Stringify(v)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]bool
	if err := json.Unmarshal([]byte(s), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", s, err)
	}
	want := map[string]bool{"noArgs": true, "extraArg": true, "arrayKey": true, "fractionKey": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("removeFile argument checks (-want +got):\n%s", diff)
	}
	if e.Files().Len() != 0 {
		t.Errorf("pool len = %d, want 0", e.Files().Len())
	}
}

func TestLoadFile_FromScript(t *testing.T) {
	dir := scriptDir(t, map[string]string{
		"data.txt": "payload",
		"main.js": `
function error(fn) {
    try {
        fn();
        return "";
    } catch (e) {
        return e instanceof TypeError ? "TypeError" : "Error";
    }
}
module.exports = {
    missingPath: error(function () { loadFile(1); }),
    numericPath: error(function () { loadFile(1, 42); }),
    notFound: error(function () { loadFile(1, __dirname + "missing.txt"); }),
    ok: error(function () { loadFile(2, __dirname + "data.txt"); })
};
`,
	})

	e := New()
	v, err := e.RunFile(filepath.Join(dir, "main.js"), "")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	s, err := e.Stringify(v)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(s), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", s, err)
	}
	want := map[string]string{"missingPath": "TypeError", "numericPath": "TypeError", "notFound": "Error", "ok": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loadFile results (-want +got):\n%s", diff)
	}
	if d := e.Files().Get(2); d == nil || string(d.Buffer()) != "payload" {
		t.Error("loadFile(2, ...) did not store the file")
	}
}
