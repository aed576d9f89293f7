// procname.go resolves a connecting client's process name, standing in
// for the original's procname_from_pid table scan over the process
// manager's in-kernel proctable.
package adapter

import (
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

const unknownProcName = "unknown-pid"

// ProcNames resolves a human-readable process name for a connected peer.
type ProcNames interface {
	// Name returns the process name for conn's peer, or unknownProcName
	// if it cannot be determined.
	Name(conn *net.UnixConn) string
}

// PeerCredResolver resolves process names via SO_PEERCRED on the
// accepted Unix socket to get the peer's pid, then reads /proc/<pid>/comm.
// This is the concrete analogue of the original's RS_PROC_NR process
// table lookup.
type PeerCredResolver struct{}

func (PeerCredResolver) Name(conn *net.UnixConn) string {
	pid, err := peerPID(conn)
	if err != nil {
		return unknownProcName
	}
	name, err := commFromPID(pid)
	if err != nil {
		return unknownProcName
	}
	return name
}

func peerPID(conn *net.UnixConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}

	var cred *unix.Ucred
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		cred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	if sockErr != nil {
		return 0, sockErr
	}
	return int(cred.Pid), nil
}

func commFromPID(pid int) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
