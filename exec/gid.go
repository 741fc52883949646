package exec

import (
	"bytes"
	"runtime"
	"strconv"
)

// gid returns the id of the calling goroutine, parsed from the first
// line of its stack trace ("goroutine N [running]:"). Loop uses it only
// to decide whether Dispatch may run a task inline; nothing else in the
// library depends on goroutine identity.
func gid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return -1
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
