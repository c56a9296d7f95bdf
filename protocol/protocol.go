// Package protocol defines the types necessary for unmarshalling a
// Wayland protocol description XML file, along with the descriptions of the
// protocols spoken by this module.
package protocol

import (
	_ "embed"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

//go:generate go run deedles.dev/wlcomp/cmd/wlgen -xml wayland.xml -out wayland.go
//go:generate go run deedles.dev/wlcomp/cmd/wlgen -xml extensions.xml -out extensions.go

var (
	//go:embed wayland.xml
	waylandXML string

	//go:embed extensions.xml
	extensionsXML string
)

type Protocol struct {
	Name      string `xml:"name,attr"`
	Copyright string `xml:"copyright"`

	Interfaces []Interface `xml:"interface"`
}

// Load decodes a protocol description from r.
func Load(r io.Reader) (proto Protocol, err error) {
	d := xml.NewDecoder(r)
	err = d.Decode(&proto)
	return proto, err
}

type Interface struct {
	Name        string      `xml:"name,attr"`
	Version     int         `xml:"version,attr"`
	Description Description `xml:"description"`

	Requests []Op   `xml:"request"`
	Events   []Op   `xml:"event"`
	Enums    []Enum `xml:"enum"`
}

// RequestName returns the name of the request with the given opcode.
func (i Interface) RequestName(op uint16) string {
	return opName(i.Requests, op)
}

// EventName returns the name of the event with the given opcode.
func (i Interface) EventName(op uint16) string {
	return opName(i.Events, op)
}

func opName(ops []Op, op uint16) string {
	if int(op) >= len(ops) {
		return fmt.Sprintf("op%v", op)
	}
	return ops[op].Name
}

type Description struct {
	Summary string `xml:"summary,attr"`
	Full    string `xml:",chardata"`
}

type Op struct {
	Name        string      `xml:"name,attr"`
	Since       int         `xml:"since,attr"`
	Description Description `xml:"description"`

	Args []Arg `xml:"arg"`
}

type Arg struct {
	Name    string `xml:"name,attr"`
	Summary string `xml:"summary,attr"`

	Type      string `xml:"type,attr"`
	Interface string `xml:"interface,attr"`
	Version   int    `xml:"version,attr"`
	AllowNull bool   `xml:"allow-null,attr"`
}

type Enum struct {
	Name        string      `xml:"name,attr"`
	Description Description `xml:"description"`

	Entries []Entry `xml:"entry"`
}

type Entry struct {
	Name    string `xml:"name,attr"`
	Summary string `xml:"summary,attr"`
	Value   string `xml:"value,attr"`
}

func (e Entry) Int() (int, error) {
	v, err := strconv.ParseInt(e.Value, 0, 0)
	return int(v), err
}

var builtin = sync.OnceValues(func() ([]Protocol, error) {
	var protos []Protocol
	for _, src := range []string{waylandXML, extensionsXML} {
		proto, err := Load(strings.NewReader(src))
		if err != nil {
			return nil, err
		}
		protos = append(protos, proto)
	}
	return protos, nil
})

// Builtin returns the protocols that are compiled into the module:
// the core Wayland protocol and the compositor's extensions.
func Builtin() []Protocol {
	protos, err := builtin()
	if err != nil {
		panic(fmt.Errorf("decode built-in protocols: %w", err))
	}
	return protos
}

// Find looks up a built-in interface by name, such as "wl_surface".
func Find(name string) (Interface, bool) {
	for _, proto := range Builtin() {
		for _, i := range proto.Interfaces {
			if i.Name == name {
				return i, true
			}
		}
	}
	return Interface{}, false
}
