// wlgen generates Go constants for the interfaces, opcodes and enums
// of a Wayland protocol XML description.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"log"
	"os"
	"text/template"

	"deedles.dev/wlcomp/protocol"
)

const tmpl = `// Code generated by wlgen. DO NOT EDIT.

package {{.Config.Package}}
{{range $iface := .Protocol.Interfaces}}
// {{.Name}}
const (
	{{ident .Name}}Interface = {{printf "%q" .Name}}
	{{ident .Name}}Version = {{.Version}}
)
{{with .Requests}}
const (
{{- range $i, $op := .}}
	{{ident $iface.Name}}Request{{camel $op.Name}} uint16 = {{$i}}
{{- end}}
)
{{end}}
{{- with .Events}}
const (
{{- range $i, $op := .}}
	{{ident $iface.Name}}Event{{camel $op.Name}} uint16 = {{$i}}
{{- end}}
)
{{end}}
{{- range $enum := .Enums}}
const (
{{- range .Entries}}
	{{ident $iface.Name}}{{camel $enum.Name}}{{camel .Name}} uint32 = {{.Value}}
{{- end}}
)
{{end}}
{{- end}}`

type Config struct {
	Package string
	Prefix  string
}

type Context struct {
	Config   Config
	Protocol protocol.Protocol
	T        *template.Template
}

func loadXML(path string) (proto protocol.Protocol, err error) {
	file, err := os.Open(path)
	if err != nil {
		return proto, err
	}
	defer file.Close()

	return protocol.Load(file)
}

func generate(ctx Context) ([]byte, error) {
	ctx.T = template.New("protocol").Funcs(template.FuncMap{
		"ident": ctx.ident,
		"camel": ctx.camel,
	})
	_, err := ctx.T.Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	err = ctx.T.Execute(&buf, ctx)
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("format output: %w", err)
	}
	return out, nil
}

func main() {
	xmlfile := flag.String("xml", "", "protocol XML file")
	out := flag.String("out", "", "output file (default stdout)")
	pkg := flag.String("pkg", "protocol", "output package name")
	prefix := flag.String("prefix", "wl_", "interface prefix name to strip")
	flag.Parse()

	proto, err := loadXML(*xmlfile)
	if err != nil {
		log.Fatalf("load XML: %v", err)
	}

	src, err := generate(Context{
		Config: Config{
			Package: *pkg,
			Prefix:  *prefix,
		},
		Protocol: proto,
	})
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	if *out == "" {
		os.Stdout.Write(src)
		return
	}
	err = os.WriteFile(*out, src, 0644)
	if err != nil {
		log.Fatalf("write output: %v", err)
	}
}
