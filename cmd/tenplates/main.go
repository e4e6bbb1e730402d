// Command tenplates compiles a TenPlates template to standard output,
// mirroring the teacher's thin examples/*/main.go demo programs (spec
// §6.4).
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tenplates "github.com/frankiebaffa/tenplates"
	"github.com/frankiebaffa/tenplates/internal/fsys"
	"github.com/frankiebaffa/tenplates/internal/tplerr"
	"github.com/frankiebaffa/tenplates/internal/value"
	"gopkg.in/yaml.v2"
)

const usage = `usage: tenplates [PATH | -] [--vars FILE.yaml] [--param KEY=VALUE ...]
       tenplates --sweep DIR [--vars FILE.yaml] [--param KEY=VALUE ...]

Compiles a TenPlates template and writes the rendered output to stdout.
PATH may be "-" to read the template from standard input.

  --sweep DIR        compile every *.tenplate file directly under DIR,
                      reporting every failure instead of stopping at the
                      first one
  --vars FILE.yaml   load a YAML document of variables into the root context
  --param KEY=VALUE  bind params.KEY to VALUE (repeatable)
  --help, -h         show this message
  --version, -v      print the version and exit
`

const version = "0.1.0"

var logger = log.New(os.Stderr, "", 0)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Println(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var path string
	var sweepDir string
	params := make(map[string]string)
	var varsFile string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--help" || arg == "-h":
			fmt.Print(usage)
			os.Exit(0)
		case arg == "--version" || arg == "-v":
			fmt.Println(version)
			os.Exit(0)
		case arg == "--sweep":
			i++
			if i >= len(args) {
				return fmt.Errorf("--sweep requires a directory argument")
			}
			sweepDir = args[i]
		case arg == "--vars":
			i++
			if i >= len(args) {
				return fmt.Errorf("--vars requires a file argument")
			}
			varsFile = args[i]
		case arg == "--param":
			i++
			if i >= len(args) {
				return fmt.Errorf("--param requires a KEY=VALUE argument")
			}
			k, v, ok := strings.Cut(args[i], "=")
			if !ok {
				return fmt.Errorf("--param argument %q is not KEY=VALUE", args[i])
			}
			params[k] = v
		case path == "" && sweepDir == "":
			path = arg
		default:
			return fmt.Errorf("unexpected argument %q", arg)
		}
	}

	if path == "" && sweepDir == "" {
		fmt.Print(usage)
		return fmt.Errorf("no template path given")
	}

	opts := []tenplates.Option{tenplates.WithParams(params)}
	if varsFile != "" {
		vars, err := loadVars(varsFile)
		if err != nil {
			return fmt.Errorf("loading %s: %w", varsFile, err)
		}
		opts = append(opts, tenplates.WithVars(vars))
	}

	if sweepDir != "" {
		return sweep(sweepDir, opts)
	}

	if path == "-" {
		return tenplates.Compile(os.Stdin, os.Stdout, opts...)
	}
	return tenplates.CompileFile(path, os.Stdout, opts...)
}

// sweep compiles every *.tenplate file directly under dir, writing each
// one's rendered output to stdout under a header line and collecting
// every failure into a tplerr.Collection rather than stopping at the
// first one, so one broken template in a directory never hides the
// others.
func sweep(dir string, opts []tenplates.Option) error {
	files, err := fsys.ListFilesOnly(fsys.OS{}, dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}

	var failures tplerr.Collection
	for _, f := range files {
		if filepath.Ext(f) != ".tenplate" {
			continue
		}
		fmt.Printf("=== %s ===\n", f)
		if err := tenplates.CompileFile(f, os.Stdout, opts...); err != nil {
			var cerr *tplerr.CompileError
			if errors.As(err, &cerr) {
				failures.Add(cerr)
				continue
			}
			failures.Add(tplerr.New(tplerr.Io, "%s", err).WithFile(f))
		}
	}

	if failures.HasErrors() {
		return &failures
	}
	return nil
}

// loadVars decodes a YAML document of scalars, lists of maps, and
// maps into root-context bindings, wiring gopkg.in/yaml.v2 into the
// CLI exactly as described in SPEC_FULL.md §D.
func loadVars(path string) (map[string]value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	vars := make(map[string]value.Value, len(raw))
	for k, v := range raw {
		vars[k] = yamlToValue(v)
	}
	return vars, nil
}

func yamlToValue(v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null
	case bool:
		if t {
			return value.NewInteger(1)
		}
		return value.NewInteger(0)
	case int:
		return value.NewInteger(int64(t))
	case int64:
		return value.NewInteger(t)
	case float64:
		return value.NewReal(t)
	case string:
		return value.NewText(t)
	case []interface{}:
		rows := make(value.Rows, 0, len(t))
		for _, item := range t {
			rows = append(rows, yamlToRow(item))
		}
		return value.NewRows(rows)
	case map[interface{}]interface{}:
		return value.NewRow(yamlToRow(t))
	case map[string]interface{}:
		return value.NewRow(yamlToRow(t))
	default:
		return value.NewText(fmt.Sprintf("%v", t))
	}
}

// yamlToRow flattens a YAML mapping into a Row of scalars, stringifying
// anything that would otherwise violate the "a row cannot nest a row"
// invariant.
func yamlToRow(v interface{}) value.Row {
	row := value.Row{}
	var m map[interface{}]interface{}
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m = t
	case map[string]interface{}:
		m = make(map[interface{}]interface{}, len(t))
		for k, val := range t {
			m[k] = val
		}
	default:
		_ = row.Set("value", yamlToValue(v))
		return row
	}

	for k, val := range m {
		key := fmt.Sprintf("%v", k)
		scalar := yamlToValue(val)
		if scalar.Kind() == value.KindRow || scalar.Kind() == value.KindRows {
			scalar = value.NewText(fmt.Sprintf("%v", val))
		}
		_ = row.Set(key, scalar)
	}
	return row
}
