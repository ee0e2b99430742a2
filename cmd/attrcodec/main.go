package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/attrkit/attrcodec"
	"github.com/attrkit/attrcodec/jsonschema"
	"github.com/attrkit/attrcodec/schema"
	"github.com/attrkit/attrcodec/wire"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "check":
		checkCmd(os.Args[2:])
	case "convert":
		convertCmd(os.Args[2:])
	case "fmt":
		fmtCmd(os.Args[2:])
	case "export":
		exportCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `attrcodec CLI

Usage:
  attrcodec check  -schema schema.yaml [data.json ...]
  attrcodec convert -from json -to cbor [-schema schema.yaml] [-o out] [in]
  attrcodec fmt    -schema schema.yaml [-to json|yaml] [-o out]
  attrcodec export -schema schema.yaml [-o out.json]

Notes:
  - Schema documents are the serialized schema form, JSON or YAML by extension.
  - Attribute data uses the tagged JSON form, plain YAML, or tagged CBOR.
  - check with no data files validates only the schema document itself.
  - export renders the schema as a JSON Schema for the tagged JSON form.`)
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema document to check against")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	node, err := loadSchema(schemaPath)
	if err != nil {
		reportIssues(schemaPath, err)
		os.Exit(1)
	}
	codec := attrcodec.DeriveAny(node)

	failed := false
	for _, path := range fs.Args() {
		v, err := loadValue(path, formatByExt(path, "json"))
		if err != nil {
			reportIssues(path, err)
			failed = true
			continue
		}
		if _, err := codec.Decode(v); err != nil {
			reportIssues(path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	if failed {
		os.Exit(1)
	}
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var from, to, schemaPath, out string
	fs.StringVar(&from, "from", "json", "input form: json, yaml or cbor")
	fs.StringVar(&to, "to", "json", "output form: json, yaml or cbor")
	fs.StringVar(&schemaPath, "schema", "", "optional schema to validate against")
	fs.StringVar(&out, "o", "", "output filename, stdout when empty")
	_ = fs.Parse(args)

	in := ""
	if fs.NArg() > 0 {
		in = fs.Arg(0)
	}
	v, err := loadValue(in, from)
	if err != nil {
		reportIssues(orStdin(in), err)
		os.Exit(1)
	}

	if schemaPath != "" {
		node, err := loadSchema(schemaPath)
		if err != nil {
			reportIssues(schemaPath, err)
			os.Exit(1)
		}
		if _, err := attrcodec.DeriveAny(node).Decode(v); err != nil {
			reportIssues(orStdin(in), err)
			os.Exit(1)
		}
	}

	data, err := serializeValue(v, to)
	if err != nil {
		fatalf("serialize: %v", err)
	}
	writeOut(out, data)
}

func fmtCmd(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	var schemaPath, to, out string
	fs.StringVar(&schemaPath, "schema", "", "schema document to reformat")
	fs.StringVar(&to, "to", "", "output form: json or yaml, input form when empty")
	fs.StringVar(&out, "o", "", "output filename, stdout when empty")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	node, err := loadSchema(schemaPath)
	if err != nil {
		reportIssues(schemaPath, err)
		os.Exit(1)
	}
	if to == "" {
		to = formatByExt(schemaPath, "json")
	}
	var data []byte
	switch to {
	case "json":
		data, err = attrcodec.FormatSchema(node)
	case "yaml":
		data, err = attrcodec.FormatSchemaYAML(node)
	default:
		fatalf("unknown output form %q", to)
	}
	if err != nil {
		fatalf("format: %v", err)
	}
	writeOut(out, data)
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var schemaPath, out string
	fs.StringVar(&schemaPath, "schema", "", "schema document to export")
	fs.StringVar(&out, "o", "", "output filename, stdout when empty")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	node, err := loadSchema(schemaPath)
	if err != nil {
		reportIssues(schemaPath, err)
		os.Exit(1)
	}
	data, err := json.MarshalIndent(jsonschema.FromNode(node), "", "  ")
	if err != nil {
		fatalf("export: %v", err)
	}
	writeOut(out, data)
}

// loadSchema reads and materializes a schema document, picking the
// parser by extension.
func loadSchema(path string) (schema.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if formatByExt(path, "json") == "yaml" {
		return attrcodec.ParseSchemaYAML(data)
	}
	return attrcodec.ParseSchema(data)
}

// loadValue reads an attribute value in the given form; an empty path
// reads stdin.
func loadValue(path, form string) (wire.Value, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return wire.Value{}, err
	}
	switch form {
	case "json":
		return wire.FromJSON(data)
	case "yaml":
		return wire.FromYAML(data)
	case "cbor":
		return wire.FromCBOR(data)
	default:
		return wire.Value{}, fmt.Errorf("unknown input form %q", form)
	}
}

func serializeValue(v wire.Value, form string) ([]byte, error) {
	switch form {
	case "json":
		return wire.ToJSON(v)
	case "yaml":
		return wire.ToYAML(v)
	case "cbor":
		return wire.ToCBOR(v)
	default:
		return nil, fmt.Errorf("unknown output form %q", form)
	}
}

func formatByExt(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".cbor":
		return "cbor"
	default:
		return fallback
	}
}

func orStdin(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}

// reportIssues prints a decode failure one issue per line, with the
// pointer into the document where it happened.
func reportIssues(src string, err error) {
	if iss, ok := attrcodec.AsIssues(err); ok {
		for _, it := range iss {
			line := fmt.Sprintf("%s: %s at %s: %s", src, it.Code, it.Path, it.Message)
			if it.Hint != "" {
				line += " (" + it.Hint + ")"
			}
			fmt.Fprintln(os.Stderr, line)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", src, err)
}

func writeOut(out string, data []byte) {
	if out == "" {
		os.Stdout.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Println()
		}
		return
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fatalf("creating output dir: %v", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
