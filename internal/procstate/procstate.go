// Package procstate enriches a decoded event's raw thread ID with process
// metadata read from /proc: command name, scheduling state, parent/process
// IDs, owning UID/GID, and cgroup membership. It is grounded on the original
// collector's ThreadRegistry and cgroup parser (state/thread.rs,
// state/cgroups.rs), reimplemented here on top of
// github.com/shirou/gopsutil/v3 for the process fields that library already
// exposes portably, with a small direct /proc/[pid]/cgroup reader for the
// one field gopsutil does not provide.
package procstate

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// CGroup is one entry of /proc/[pid]/cgroup: a hierarchy ID, the controllers
// bound to it, and the cgroup pathname within that hierarchy.
type CGroup struct {
	ID          uint64   `json:"id"`
	Controllers []string `json:"controllers,omitempty"`
	Path        string   `json:"path"`
}

// ThreadInfo mirrors the fields the original collector attached to every
// decoded event for host-side triage.
type ThreadInfo struct {
	Comm    string   `json:"comm"`
	State   string   `json:"state"`
	PID     int32    `json:"pid"`
	TID     int32    `json:"tid"`
	PPID    int32    `json:"ppid"`
	UID     uint32   `json:"uid"`
	GID     uint32   `json:"gid"`
	CGroups []CGroup `json:"cgroups,omitempty"`
}

// Registry resolves thread IDs to ThreadInfo on demand. It holds no
// background refresh loop: /proc is consulted fresh on every Lookup, because
// process identity (comm, uid) can change between two events for the same
// reused TID and a stale cache would misattribute them.
type Registry struct {
	procRoot string
}

// NewRegistry creates a Registry rooted at /proc.
func NewRegistry() *Registry {
	return &Registry{procRoot: "/proc"}
}

// Lookup resolves tid to a ThreadInfo. It returns an error if the process
// has already exited by the time of the call; callers should treat that as
// "enrichment unavailable", not as a reason to drop the underlying event.
func (r *Registry) Lookup(tid int32) (ThreadInfo, error) {
	p, err := process.NewProcess(tid)
	if err != nil {
		return ThreadInfo{}, fmt.Errorf("procstate: open pid %d: %w", tid, err)
	}

	info := ThreadInfo{TID: tid}

	if name, err := p.Name(); err == nil {
		info.Comm = name
	}
	if statuses, err := p.Status(); err == nil && len(statuses) > 0 {
		info.State = statuses[0]
	}
	if ppid, err := p.Ppid(); err == nil {
		info.PPID = ppid
	}
	if uids, err := p.Uids(); err == nil && len(uids) > 0 {
		info.UID = uint32(uids[0])
	}
	if gids, err := p.Gids(); err == nil && len(gids) > 0 {
		info.GID = uint32(gids[0])
	}
	info.PID = tid

	cgroups, err := r.cgroups(tid)
	if err == nil {
		info.CGroups = cgroups
	}

	return info, nil
}

// cgroups reads and parses /proc/[pid]/cgroup, the one field gopsutil does
// not expose.
func (r *Registry) cgroups(pid int32) ([]CGroup, error) {
	f, err := os.Open(fmt.Sprintf("%s/%d/cgroup", r.procRoot, pid))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []CGroup
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		cg, ok := parseCGroupLine(sc.Text())
		if ok {
			out = append(out, cg)
		}
	}
	return out, sc.Err()
}

// parseCGroupLine parses one line of the form
// "7:cpu,cpuacct:/user.slice" into a CGroup. The special "name=systemd"
// pseudo-controller is kept as a single-element Controllers slice, matching
// what the kernel writes for that hierarchy.
func parseCGroupLine(line string) (CGroup, bool) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return CGroup{}, false
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return CGroup{}, false
	}

	var controllers []string
	if parts[1] != "" {
		controllers = strings.Split(parts[1], ",")
	}

	return CGroup{ID: id, Controllers: controllers, Path: parts[2]}, true
}
