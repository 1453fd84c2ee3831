package log

import (
	"fmt"
	"sync"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built field by field without allocating. A nil
// *EntryZ is valid and does nothing, so that disabled log calls cost only
// the method calls:
//
//	log.ModCPU.WarnZ("illegal opcode").Hex16("pc", pc).Hex8("op", op).End()
type EntryZ struct {
	lvl Level
	mod Module
	msg string

	zfbuf [maxZFields]ZField
	zfidx int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	e := entryPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (z *EntryZ) next() *ZField {
	if z.zfidx == maxZFields {
		return &ZField{}
	}
	f := &z.zfbuf[z.zfidx]
	z.zfidx++
	*f = ZField{}
	return f
}

func (z *EntryZ) String(key string, val string) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.String = FieldTypeString, key, val
	}
	return z
}

func (z *EntryZ) Stringer(key string, val fmt.Stringer) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Interface = FieldTypeStringer, key, val
	}
	return z
}

func (z *EntryZ) Bool(key string, val bool) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Boolean = FieldTypeBool, key, val
	}
	return z
}

func (z *EntryZ) Int(key string, val int) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Integer = FieldTypeInt, key, uint64(val)
	}
	return z
}

func (z *EntryZ) Uint8(key string, val uint8) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Integer = FieldTypeUint, key, uint64(val)
	}
	return z
}

func (z *EntryZ) Uint16(key string, val uint16) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Integer = FieldTypeUint, key, uint64(val)
	}
	return z
}

func (z *EntryZ) Hex8(key string, val uint8) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Integer = FieldTypeHex8, key, uint64(val)
	}
	return z
}

func (z *EntryZ) Hex16(key string, val uint16) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Integer = FieldTypeHex16, key, uint64(val)
	}
	return z
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	if z != nil {
		f := z.next()
		f.Type, f.Key, f.Error = FieldTypeError, key, err
	}
	return z
}

// End emits the entry and releases it. The entry must not be used after.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = z.mod.String()
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	e := logrus.StandardLogger().WithFields(fields)

	switch z.lvl {
	case DebugLevel:
		e.Debug(z.msg)
	case InfoLevel:
		e.Info(z.msg)
	case WarnLevel:
		e.Warn(z.msg)
	case ErrorLevel:
		e.Error(z.msg)
	case FatalLevel:
		e.Fatal(z.msg)
	default:
		e.Panic(z.msg)
	}

	clear(z.zfbuf[:z.zfidx])
	entryPool.Put(z)
}
