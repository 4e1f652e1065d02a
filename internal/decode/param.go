package decode

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/cubostratus/collector/internal/syscallmeta"
	"github.com/cubostratus/collector/internal/value"
)

// DecodeParam produces a typed Value from one parameter's raw payload bytes,
// per desc.Type. Numeric types read the appropriate fixed-width
// little-endian integer; the caller is responsible for slicing buf to
// exactly the parameter's declared length (the decoder never looks past the
// end of buf on its own, but also never validates buf is long enough for
// cross-field-dependent types such as SockTuple beyond what its case reads).
//
// CharBuffer, ByteBuffer, and FsPath interpret buf as a NUL-terminated byte
// sequence and produce a string via lossy UTF-8 conversion; if no NUL byte
// is present the entire buffer is used. Domain aliases decode to the
// documented integer width (Fd/Pid/ErrNo -> Int64; Uid/Gid -> UInt32;
// SyscallId -> UInt16). Flags8/Flags16/Flags32 decode to the matching
// fixed-width unsigned integer, not a symbolic flag set — callers that need
// flag names resolve them from the raw bits via Format: ParamFormatHex. Any
// type outside this supported subset yields value.None — the parameter is
// still recorded under its name by the caller, just with no payload.
func DecodeParam(desc syscallmeta.ParamDescriptor, buf []byte) value.Value {
	switch desc.Type {
	case syscallmeta.ParamTypeInt8:
		if len(buf) < 1 {
			return value.None()
		}
		return value.Int8(int8(buf[0]))
	case syscallmeta.ParamTypeInt16:
		if len(buf) < 2 {
			return value.None()
		}
		return value.Int16(int16(binary.LittleEndian.Uint16(buf)))
	case syscallmeta.ParamTypeInt32:
		if len(buf) < 4 {
			return value.None()
		}
		return value.Int32(int32(binary.LittleEndian.Uint32(buf)))
	case syscallmeta.ParamTypeInt64:
		if len(buf) < 8 {
			return value.None()
		}
		return value.Int64(int64(binary.LittleEndian.Uint64(buf)))
	case syscallmeta.ParamTypeUInt8:
		if len(buf) < 1 {
			return value.None()
		}
		return value.UInt8(buf[0])
	case syscallmeta.ParamTypeUInt16:
		if len(buf) < 2 {
			return value.None()
		}
		return value.UInt16(binary.LittleEndian.Uint16(buf))
	case syscallmeta.ParamTypeUInt32:
		if len(buf) < 4 {
			return value.None()
		}
		return value.UInt32(binary.LittleEndian.Uint32(buf))
	case syscallmeta.ParamTypeUInt64:
		if len(buf) < 8 {
			return value.None()
		}
		return value.UInt64(binary.LittleEndian.Uint64(buf))

	case syscallmeta.ParamTypeFd, syscallmeta.ParamTypePid, syscallmeta.ParamTypeErrNo:
		if len(buf) < 8 {
			return value.None()
		}
		return value.Int64(int64(binary.LittleEndian.Uint64(buf)))
	case syscallmeta.ParamTypeUid, syscallmeta.ParamTypeGid:
		if len(buf) < 4 {
			return value.None()
		}
		return value.UInt32(binary.LittleEndian.Uint32(buf))
	case syscallmeta.ParamTypeSyscallId:
		if len(buf) < 2 {
			return value.None()
		}
		return value.UInt16(binary.LittleEndian.Uint16(buf))

	case syscallmeta.ParamTypeCharBuffer, syscallmeta.ParamTypeByteBuffer, syscallmeta.ParamTypeFsPath:
		return value.String(nullTerminated(buf))

	case syscallmeta.ParamTypeFlags8:
		if len(buf) < 1 {
			return value.None()
		}
		return value.UInt8(buf[0])
	case syscallmeta.ParamTypeFlags16:
		if len(buf) < 2 {
			return value.None()
		}
		return value.UInt16(binary.LittleEndian.Uint16(buf))
	case syscallmeta.ParamTypeFlags32:
		if len(buf) < 4 {
			return value.None()
		}
		return value.UInt32(binary.LittleEndian.Uint32(buf))

	default:
		return value.None()
	}
}

// nullTerminated returns the lossily-UTF8-decoded content of buf up to and
// excluding the first NUL byte, or all of buf if no NUL is present.
func nullTerminated(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if utf8.Valid(buf) {
		return string(buf)
	}
	return toValidUTF8Lossy(buf)
}

// toValidUTF8Lossy replaces each run of invalid UTF-8 bytes with a single
// replacement character.
func toValidUTF8Lossy(buf []byte) string {
	return string(bytes.ToValidUTF8(buf, []byte(string(utf8.RuneError))))
}
