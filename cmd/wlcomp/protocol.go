package main

import (
	"fmt"
	"io"
	"strings"

	"deedles.dev/wlcomp/protocol"
	"github.com/spf13/cobra"
)

var protocolCmd = &cobra.Command{
	Use:   "protocol [interface...]",
	Short: "Describe the built-in protocol interfaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) == 0 {
			listInterfaces(w)
			return nil
		}

		for _, name := range args {
			iface, ok := protocol.Find(name)
			if !ok {
				return fmt.Errorf("unknown interface %q", name)
			}
			describeInterface(w, iface)
		}
		return nil
	},
}

func listInterfaces(w io.Writer) {
	for _, proto := range protocol.Builtin() {
		fmt.Fprintf(w, "%v:\n", proto.Name)
		for _, iface := range proto.Interfaces {
			fmt.Fprintf(w, "  %v v%v\n", iface.Name, iface.Version)
		}
	}
}

func describeInterface(w io.Writer, iface protocol.Interface) {
	fmt.Fprintf(w, "%v v%v", iface.Name, iface.Version)
	if iface.Description.Summary != "" {
		fmt.Fprintf(w, ": %v", iface.Description.Summary)
	}
	fmt.Fprintln(w)

	describeOps(w, "request", iface.Requests)
	describeOps(w, "event", iface.Events)
	for _, enum := range iface.Enums {
		fmt.Fprintf(w, "  enum %v\n", enum.Name)
		for _, e := range enum.Entries {
			fmt.Fprintf(w, "    %v = %v\n", e.Name, e.Value)
		}
	}
}

func describeOps(w io.Writer, kind string, ops []protocol.Op) {
	for i, op := range ops {
		args := make([]string, 0, len(op.Args))
		for _, arg := range op.Args {
			t := arg.Type
			if arg.Interface != "" {
				t += "<" + arg.Interface + ">"
			}
			if arg.AllowNull {
				t = "?" + t
			}
			args = append(args, arg.Name+" "+t)
		}
		fmt.Fprintf(w, "  %v %v: %v(%v)\n", kind, i, op.Name, strings.Join(args, ", "))
	}
}
