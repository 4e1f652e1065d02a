// Package syscallmeta holds the static, index-addressed catalogue mapping a
// synthetic syscall id to its name, category, flags, and parameter
// descriptors. The table is immutable after package init and is safe for
// concurrent read access.
package syscallmeta

// Category classifies a syscall for presentation and filtering purposes. It
// does not affect decoding.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryOther
	CategoryFile
	CategoryNet
	CategoryIPC
	CategoryMemory
	CategoryProcess
	CategorySleep
	CategorySystem
	CategorySignal
	CategoryUser
	CategoryTime
	CategoryProcessing
	CategoryIOBase
	CategoryIORead
	CategoryIOWrite
	CategoryIOOther
	CategoryWait
	CategoryScheduler
	CategoryInternal
)

// Flag is one bit of a syscall's behavior set. A SyscallMeta carries a small
// slice of these rather than a bitmask, matching the source table's shape.
type Flag int

const (
	FlagNone Flag = iota
	FlagCreatesFd
	FlagDestroysFd
	FlagUsesFd
	FlagReadsFromFd
	FlagWritesToFd
	FlagModifiesState
	FlagUnused
	FlagWaits
	FlagSkipParser
	FlagOldVersion
)

// ParamType is the closed enumeration of parameter payload shapes the
// decoder understands. Types outside this set still appear in the table
// (reserved for future drivers) but decode to value.None.
type ParamType int

const (
	ParamTypeNone ParamType = iota
	ParamTypeInt8
	ParamTypeInt16
	ParamTypeInt32
	ParamTypeInt64
	ParamTypeUInt8
	ParamTypeUInt16
	ParamTypeUInt32
	ParamTypeUInt64
	ParamTypeCharBuffer // NUL-terminated, lossy UTF-8
	ParamTypeByteBuffer // NUL-terminated, lossy UTF-8
	ParamTypeErrNo      // alias -> Int64
	ParamTypeSockAddr
	ParamTypeSockTuple
	ParamTypeFd  // alias -> Int64
	ParamTypePid // alias -> Int64
	ParamTypeFdList
	ParamTypeFsPath // alias -> String, NUL-terminated
	ParamTypeSyscallId // alias -> UInt16
	ParamTypeSigType
	ParamTypeRelTime
	ParamTypeAbsTime
	ParamTypePort
	ParamTypeL4Proto
	ParamTypeSockFamily
	ParamTypeBool
	ParamTypeIpv4Addr
	ParamTypeDyn
	ParamTypeFlags8
	ParamTypeFlags16
	ParamTypeFlags32
	ParamTypeUid // alias -> UInt32
	ParamTypeGid // alias -> UInt32
	ParamTypeDouble
	ParamTypeSigset
	ParamTypeCharBufferArray
	ParamTypeCharBufferPairArray
	ParamTypeIpv4Net
)

// ParamFormat is a presentation hint only; it never affects decoding.
type ParamFormat int

const (
	ParamFormatNa ParamFormat = iota
	ParamFormatDec
	ParamFormatHex
	ParamFormatPaddedDec
	ParamFormatId
	ParamFormatDir
)

// ParamDescriptor is the static schema of one parameter of one syscall
// variant: its name, wire type, and presentation format.
type ParamDescriptor struct {
	Name   string
	Type   ParamType
	Format ParamFormat
}

// SyscallMeta describes one (syscall, direction) variant: enter and exit of
// the same syscall are two distinct entries at two distinct ids.
type SyscallMeta struct {
	Name    string
	Category Category
	Flags   []Flag
	NParams int
	Params  []ParamDescriptor
}

// Table is a read-only, index-addressed catalogue of SyscallMeta, built once
// at init from a static literal (table_data.go). Id 0 is the generic
// "syscall" enter entry; ids increase as documented in the table's source
// comment.
type Table []SyscallMeta

// Lookup returns the SyscallMeta at id and true, or a zero value and false
// if id is out of range. It never allocates and never panics: an
// out-of-range id is the normal "unknown syscall, drop the record" path, not
// an error condition.
func (t Table) Lookup(id uint16) (SyscallMeta, bool) {
	if int(id) >= len(t) {
		return SyscallMeta{}, false
	}
	return t[id], true
}
