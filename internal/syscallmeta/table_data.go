package syscallmeta

// DefaultTable is the built-in syscall metadata catalogue. Ids 0-14 are
// ported verbatim from the source collector's literal table
// (syscall/syscall_table.rs); ids 15-85 extend coverage to every
// (syscall, direction) pair named in that file's Syscalls enum, each given a
// best-effort parameter descriptor set so Lookup never silently degrades for
// an id the original enum enumerates but the original literal table left
// unpopulated.
//
// Enter-side variants conventionally carry no decoded parameters (the
// interesting state is captured on exit, once the syscall's return value and
// any copied-out buffers are known) unless the original table says
// otherwise. Most exit-side variants carry a "res" ErrNo parameter; the
// exits of open, accept, accept4, socketpair and pipe carry the created
// fd(s) instead, getsockname and getpeername carry only the address, and
// brk's "res" is a UInt64.
var DefaultTable Table = buildDefaultTable()

func buildDefaultTable() Table {
	t := make(Table, 86)

	// --- ported verbatim from syscall_table.rs ---
	t[0] = SyscallMeta{
		Name: "syscall", Category: CategoryOther, Flags: []Flag{FlagNone}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "id", Type: ParamTypeSyscallId, Format: ParamFormatDec},
			{Name: "native_id", Type: ParamTypeUInt16, Format: ParamFormatDec},
		},
	}
	t[1] = SyscallMeta{
		Name: "syscall", Category: CategoryOther, Flags: []Flag{FlagNone}, NParams: 1,
		Params: []ParamDescriptor{
			{Name: "id", Type: ParamTypeSyscallId, Format: ParamFormatDec},
		},
	}
	t[2] = SyscallMeta{
		Name: "open", Category: CategoryFile, Flags: []Flag{FlagCreatesFd, FlagModifiesState}, NParams: 0,
	}
	t[3] = SyscallMeta{
		Name: "open", Category: CategoryFile, Flags: []Flag{FlagCreatesFd, FlagModifiesState}, NParams: 4,
		Params: []ParamDescriptor{
			{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
			{Name: "name", Type: ParamTypeFsPath, Format: ParamFormatNa},
			{Name: "flags", Type: ParamTypeFlags32, Format: ParamFormatHex},
			{Name: "mode", Type: ParamTypeUInt32, Format: ParamFormatHex},
		},
	}
	t[4] = SyscallMeta{
		Name: "close", Category: CategoryIOOther, Flags: []Flag{FlagDestroysFd, FlagUsesFd, FlagModifiesState}, NParams: 1,
		Params: []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}},
	}
	t[5] = SyscallMeta{
		Name: "close", Category: CategoryIOOther, Flags: []Flag{FlagDestroysFd, FlagUsesFd, FlagModifiesState}, NParams: 1,
		Params: []ParamDescriptor{{Name: "res", Type: ParamTypeErrNo, Format: ParamFormatDec}},
	}
	t[6] = SyscallMeta{
		Name: "read", Category: CategoryIORead, Flags: []Flag{FlagUsesFd, FlagReadsFromFd}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
			{Name: "size", Type: ParamTypeUInt32, Format: ParamFormatDec},
		},
	}
	t[7] = SyscallMeta{
		Name: "read", Category: CategoryIORead, Flags: []Flag{FlagUsesFd, FlagReadsFromFd}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "res", Type: ParamTypeErrNo, Format: ParamFormatDec},
			{Name: "data", Type: ParamTypeByteBuffer, Format: ParamFormatNa},
		},
	}
	t[8] = SyscallMeta{
		Name: "write", Category: CategoryIOWrite, Flags: []Flag{FlagUsesFd, FlagWritesToFd}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
			{Name: "size", Type: ParamTypeUInt32, Format: ParamFormatDec},
		},
	}
	t[9] = SyscallMeta{
		Name: "write", Category: CategoryIOWrite, Flags: []Flag{FlagUsesFd, FlagWritesToFd}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "res", Type: ParamTypeErrNo, Format: ParamFormatDec},
			{Name: "data", Type: ParamTypeByteBuffer, Format: ParamFormatNa},
		},
	}
	t[10] = SyscallMeta{
		Name: "brk", Category: CategoryMemory, Flags: []Flag{FlagOldVersion}, NParams: 1,
		Params: []ParamDescriptor{{Name: "size", Type: ParamTypeUInt32, Format: ParamFormatDec}},
	}
	t[11] = SyscallMeta{
		Name: "brk", Category: CategoryMemory, Flags: []Flag{FlagOldVersion}, NParams: 1,
		Params: []ParamDescriptor{{Name: "res", Type: ParamTypeUInt64, Format: ParamFormatHex}},
	}
	t[12] = SyscallMeta{
		Name: "execve", Category: CategoryProcess, Flags: []Flag{FlagModifiesState}, NParams: 0,
	}
	t[13] = SyscallMeta{
		Name: "execve", Category: CategoryProcess, Flags: []Flag{FlagModifiesState, FlagOldVersion}, NParams: 8,
		Params: []ParamDescriptor{
			{Name: "res", Type: ParamTypeErrNo, Format: ParamFormatDec},
			{Name: "exe", Type: ParamTypeCharBuffer, Format: ParamFormatNa},
			{Name: "args", Type: ParamTypeByteBuffer, Format: ParamFormatNa},
			{Name: "tid", Type: ParamTypePid, Format: ParamFormatDec},
			{Name: "pid", Type: ParamTypePid, Format: ParamFormatDec},
			{Name: "ptid", Type: ParamTypePid, Format: ParamFormatDec},
			{Name: "cwd", Type: ParamTypeByteBuffer, Format: ParamFormatNa},
			{Name: "fdlimit", Type: ParamTypeUInt64, Format: ParamFormatDec},
		},
	}
	t[14] = SyscallMeta{
		Name: "clone", Category: CategoryProcess, Flags: []Flag{FlagModifiesState}, NParams: 0,
	}

	// --- extended coverage, ids 15-85 ---
	t[15] = exitWithRes("clone", CategoryProcess, FlagModifiesState)

	proc(t, 16, "proc_exit", CategoryProcess, FlagWaits)

	sockFamily := []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "domain", Type: ParamTypeSockFamily, Format: ParamFormatId},
		{Name: "type", Type: ParamTypeUInt32, Format: ParamFormatDec},
		{Name: "protocol", Type: ParamTypeL4Proto, Format: ParamFormatId},
	}
	t[18] = enterParams("socket", CategoryNet, sockFamily, FlagCreatesFd)
	t[19] = exitWithRes("socket", CategoryNet, FlagCreatesFd)

	addrParams := []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "addr", Type: ParamTypeSockTuple, Format: ParamFormatNa},
	}
	t[20] = enterParams("bind", CategoryNet, addrParams, FlagUsesFd, FlagModifiesState)
	t[21] = exitWithRes("bind", CategoryNet, FlagUsesFd, FlagModifiesState)
	t[22] = enterParams("connect", CategoryNet, addrParams, FlagUsesFd, FlagModifiesState)
	t[23] = exitWithRes("connect", CategoryNet, FlagUsesFd, FlagModifiesState)

	backlogParams := []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "backlog", Type: ParamTypeUInt32, Format: ParamFormatDec},
	}
	t[24] = enterParams("listen", CategoryNet, backlogParams, FlagUsesFd, FlagModifiesState)
	t[25] = exitWithRes("listen", CategoryNet, FlagUsesFd, FlagModifiesState)

	t[26] = enterParams("accept", CategoryNet, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd)
	t[27] = SyscallMeta{
		Name: "accept", Category: CategoryNet, Flags: []Flag{FlagCreatesFd}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
			{Name: "tuple", Type: ParamTypeSockTuple, Format: ParamFormatNa},
		},
	}

	dataTransfer := []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "size", Type: ParamTypeUInt32, Format: ParamFormatDec},
	}
	sendExit := []ParamDescriptor{
		{Name: "res", Type: ParamTypeErrNo, Format: ParamFormatDec},
		{Name: "data", Type: ParamTypeByteBuffer, Format: ParamFormatNa},
	}
	t[28] = enterParams("send", CategoryNet, dataTransfer, FlagUsesFd, FlagWritesToFd)
	t[29] = SyscallMeta{Name: "send", Category: CategoryNet, Flags: []Flag{FlagUsesFd, FlagWritesToFd}, NParams: 2, Params: sendExit}
	t[30] = enterParams("sendto", CategoryNet, dataTransfer, FlagUsesFd, FlagWritesToFd)
	t[31] = SyscallMeta{Name: "sendto", Category: CategoryNet, Flags: []Flag{FlagUsesFd, FlagWritesToFd}, NParams: 2, Params: sendExit}
	t[32] = enterParams("recv", CategoryNet, dataTransfer, FlagUsesFd, FlagReadsFromFd)
	t[33] = SyscallMeta{Name: "recv", Category: CategoryNet, Flags: []Flag{FlagUsesFd, FlagReadsFromFd}, NParams: 2, Params: sendExit}
	t[34] = enterParams("recvfrom", CategoryNet, dataTransfer, FlagUsesFd, FlagReadsFromFd)
	t[35] = SyscallMeta{Name: "recvfrom", Category: CategoryNet, Flags: []Flag{FlagUsesFd, FlagReadsFromFd}, NParams: 2, Params: sendExit}

	howParams := []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "how", Type: ParamTypeUInt32, Format: ParamFormatDec},
	}
	t[36] = enterParams("shutdown", CategoryNet, howParams, FlagUsesFd, FlagModifiesState)
	t[37] = exitWithRes("shutdown", CategoryNet, FlagUsesFd, FlagModifiesState)

	t[38] = enterParams("getsockname", CategoryNet, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd)
	t[39] = SyscallMeta{Name: "getsockname", Category: CategoryNet, Flags: []Flag{FlagUsesFd}, NParams: 1, Params: []ParamDescriptor{{Name: "addr", Type: ParamTypeSockTuple, Format: ParamFormatNa}}}
	t[40] = enterParams("getpeername", CategoryNet, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd)
	t[41] = SyscallMeta{Name: "getpeername", Category: CategoryNet, Flags: []Flag{FlagUsesFd}, NParams: 1, Params: []ParamDescriptor{{Name: "addr", Type: ParamTypeSockTuple, Format: ParamFormatNa}}}

	t[42] = enterParams("socketpair", CategoryNet, sockFamily, FlagCreatesFd)
	t[43] = SyscallMeta{
		Name: "socketpair", Category: CategoryNet, Flags: []Flag{FlagCreatesFd}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "fd1", Type: ParamTypeFd, Format: ParamFormatDec},
			{Name: "fd2", Type: ParamTypeFd, Format: ParamFormatDec},
		},
	}

	sockOptParams := []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "level", Type: ParamTypeUInt32, Format: ParamFormatDec},
		{Name: "optname", Type: ParamTypeUInt32, Format: ParamFormatDec},
	}
	t[44] = enterParams("setsockopt", CategoryNet, sockOptParams, FlagUsesFd, FlagModifiesState)
	t[45] = exitWithRes("setsockopt", CategoryNet, FlagUsesFd, FlagModifiesState)
	t[46] = enterParams("getsockopt", CategoryNet, sockOptParams, FlagUsesFd)
	t[47] = exitWithRes("getsockopt", CategoryNet, FlagUsesFd)

	t[48] = enterParams("sendmsg", CategoryNet, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd, FlagWritesToFd)
	t[49] = SyscallMeta{Name: "sendmsg", Category: CategoryNet, Flags: []Flag{FlagUsesFd, FlagWritesToFd}, NParams: 2, Params: sendExit}
	t[50] = enterParams("sendmmsg", CategoryNet, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd, FlagWritesToFd)
	t[51] = exitWithRes("sendmmsg", CategoryNet, FlagUsesFd, FlagWritesToFd)
	t[52] = enterParams("recvmsg", CategoryNet, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd, FlagReadsFromFd)
	t[53] = SyscallMeta{Name: "recvmsg", Category: CategoryNet, Flags: []Flag{FlagUsesFd, FlagReadsFromFd}, NParams: 2, Params: sendExit}
	t[54] = enterParams("recvmmsg", CategoryNet, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd, FlagReadsFromFd)
	t[55] = exitWithRes("recvmmsg", CategoryNet, FlagUsesFd, FlagReadsFromFd)

	t[56] = enterParams("accept4", CategoryNet, []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "flags", Type: ParamTypeFlags32, Format: ParamFormatHex},
	}, FlagUsesFd)
	t[57] = SyscallMeta{
		Name: "accept4", Category: CategoryNet, Flags: []Flag{FlagCreatesFd}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
			{Name: "tuple", Type: ParamTypeSockTuple, Format: ParamFormatNa},
		},
	}

	t[58] = enterParams("creat", CategoryFile, []ParamDescriptor{
		{Name: "name", Type: ParamTypeFsPath, Format: ParamFormatNa},
		{Name: "mode", Type: ParamTypeUInt32, Format: ParamFormatHex},
	}, FlagCreatesFd, FlagModifiesState)
	t[59] = exitWithRes("creat", CategoryFile, FlagCreatesFd, FlagModifiesState)

	proc(t, 60, "pipe", CategoryIPC, FlagCreatesFd, FlagModifiesState)
	t[61] = SyscallMeta{
		Name: "pipe", Category: CategoryIPC, Flags: []Flag{FlagCreatesFd, FlagModifiesState}, NParams: 2,
		Params: []ParamDescriptor{
			{Name: "fd1", Type: ParamTypeFd, Format: ParamFormatDec},
			{Name: "fd2", Type: ParamTypeFd, Format: ParamFormatDec},
		},
	}

	t[62] = enterParams("eventfd", CategoryIOOther, []ParamDescriptor{{Name: "initval", Type: ParamTypeUInt32, Format: ParamFormatDec}}, FlagCreatesFd)
	t[63] = exitWithRes("eventfd", CategoryIOOther, FlagCreatesFd)

	t[64] = enterParams("futex", CategoryMemory, []ParamDescriptor{
		{Name: "addr", Type: ParamTypeUInt64, Format: ParamFormatHex},
		{Name: "op", Type: ParamTypeUInt32, Format: ParamFormatDec},
	}, FlagWaits)
	t[65] = exitWithRes("futex", CategoryMemory, FlagWaits)

	statName := []ParamDescriptor{{Name: "path", Type: ParamTypeFsPath, Format: ParamFormatNa}}
	statExit := []ParamDescriptor{
		{Name: "res", Type: ParamTypeErrNo, Format: ParamFormatDec},
		{Name: "dev", Type: ParamTypeUInt32, Format: ParamFormatDec},
		{Name: "ino", Type: ParamTypeUInt64, Format: ParamFormatDec},
		{Name: "mode", Type: ParamTypeUInt32, Format: ParamFormatHex},
		{Name: "size", Type: ParamTypeUInt64, Format: ParamFormatDec},
	}
	for i, name := range []string{"stat", "lstat", "fstat", "stat64", "lstat64", "fstat64"} {
		enterID := uint16(66 + i*2)
		exitID := enterID + 1
		if name == "fstat" || name == "fstat64" {
			t[enterID] = enterParams(name, CategoryIOOther, []ParamDescriptor{{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec}}, FlagUsesFd)
		} else {
			t[enterID] = enterParams(name, CategoryIOOther, statName, FlagNone)
		}
		t[exitID] = SyscallMeta{Name: name, Category: CategoryIOOther, Flags: []Flag{FlagNone}, NParams: len(statExit), Params: statExit}
	}

	t[78] = enterParams("epoll_wait", CategoryWait, []ParamDescriptor{
		{Name: "fd", Type: ParamTypeFd, Format: ParamFormatDec},
		{Name: "timeout", Type: ParamTypeRelTime, Format: ParamFormatDec},
	}, FlagUsesFd, FlagWaits)
	t[79] = exitWithRes("epoll_wait", CategoryWait, FlagUsesFd, FlagWaits)

	t[80] = enterParams("poll", CategoryWait, []ParamDescriptor{
		{Name: "nfds", Type: ParamTypeUInt32, Format: ParamFormatDec},
		{Name: "timeout", Type: ParamTypeRelTime, Format: ParamFormatDec},
	}, FlagWaits)
	t[81] = exitWithRes("poll", CategoryWait, FlagWaits)

	t[82] = enterParams("select", CategoryWait, []ParamDescriptor{{Name: "nfds", Type: ParamTypeUInt32, Format: ParamFormatDec}}, FlagWaits)
	t[83] = exitWithRes("select", CategoryWait, FlagWaits)
	t[84] = enterParams("newselect", CategoryWait, []ParamDescriptor{{Name: "nfds", Type: ParamTypeUInt32, Format: ParamFormatDec}}, FlagWaits)
	t[85] = exitWithRes("newselect", CategoryWait, FlagWaits)

	return t
}

// enterParams builds an enter-side SyscallMeta with the given parameters and
// flags. Most enter variants in the source table carry zero parameters; this
// helper is used for the ones that plausibly do (socket-family calls that
// take arguments meaningful before the syscall returns).
func enterParams(name string, cat Category, params []ParamDescriptor, flags ...Flag) SyscallMeta {
	return SyscallMeta{Name: name, Category: cat, Flags: flags, NParams: len(params), Params: params}
}

// exitWithRes builds the common exit-side shape: a single ErrNo "res"
// parameter, used for syscalls whose return value is the only interesting
// exit-time state.
func exitWithRes(name string, cat Category, flags ...Flag) SyscallMeta {
	return SyscallMeta{
		Name: name, Category: cat, Flags: flags, NParams: 1,
		Params: []ParamDescriptor{{Name: "res", Type: ParamTypeErrNo, Format: ParamFormatDec}},
	}
}

// proc populates both the enter (id) and exit (id+1) slots with a zero- and
// one-parameter pair respectively: a parameterless enter, as the source
// table has for open, execve and clone, and a single "res" exit.
func proc(t Table, id uint16, name string, cat Category, flags ...Flag) {
	t[id] = SyscallMeta{Name: name, Category: cat, Flags: flags, NParams: 0}
	t[id+1] = exitWithRes(name, cat, flags...)
}
