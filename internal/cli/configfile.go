package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ConfigPath returns the config file location: FILEINFO_CONFIG_PATH, or
// ~/.fileinfo. It is empty when neither can be determined.
func ConfigPath() string {
	if path := os.Getenv("FILEINFO_CONFIG_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fileinfo")
}

// LoadConfigArgs reads the config file and returns it as command-line
// arguments to prepend. Returns nil if no config file is found.
//
// One setting per line; # comments and empty lines are ignored. A line is
// either a literal flag ("--json") or a bare "name value" / "name=value"
// pair that becomes "--name=value". A relative "base" value is taken
// relative to the config file's directory and always ends in a separator,
// since ./ and ../ paths are appended to it verbatim.
func LoadConfigArgs() []string {
	path := ConfigPath()
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var args []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args = append(args, configArg(line, dir))
	}
	return args
}

func configArg(line, dir string) string {
	if strings.HasPrefix(line, "-") {
		return line
	}
	name, value, ok := strings.Cut(line, "=")
	if !ok {
		name, value, ok = strings.Cut(line, " ")
	}
	name = strings.TrimSpace(name)
	if !ok {
		return "--" + name
	}
	value = strings.TrimSpace(value)
	if name == "base" {
		value = baseDir(value, dir)
	}
	return "--" + name + "=" + value
}

// baseDir anchors a relative base directory at dir.
func baseDir(value, dir string) string {
	if value == "" {
		return value
	}
	if !filepath.IsAbs(value) {
		value = filepath.Join(dir, value)
	}
	if !strings.HasSuffix(value, string(filepath.Separator)) {
		value += string(filepath.Separator)
	}
	return value
}
