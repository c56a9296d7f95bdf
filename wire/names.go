package wire

import (
	"fmt"

	"deedles.dev/wlcomp/protocol"
)

func methodName(iface string, op uint16, event bool) string {
	i, ok := protocol.Find(iface)
	if !ok {
		return fmt.Sprintf("op%v", op)
	}
	if event {
		return i.EventName(op)
	}
	return i.RequestName(op)
}
