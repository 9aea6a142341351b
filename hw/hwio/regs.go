package hwio

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type bankReg struct {
	regPtr any
	offset uint16
}

type regTag map[string]string

func parseTag(tag string) (regTag, error) {
	opts := make(regTag)
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key, val, _ := strings.Cut(opt, "=")
		if _, ok := opts[key]; ok {
			return nil, fmt.Errorf("duplicate option %q", key)
		}
		opts[key] = val
	}
	return opts, nil
}

func (t regTag) has(key string) bool {
	_, ok := t[key]
	return ok
}

func (t regTag) uint(key string, def uint64) (uint64, error) {
	s, ok := t[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("option %q: %w", key, err)
	}
	return v, nil
}

// callback returns the method to bind to the callback option key (rcb, pcb
// or wcb). Without explicit name, the method is prefix followed by the
// upper-cased field name, for example ReadPPUSTATUS.
func (t regTag) callback(v reflect.Value, key, prefix, field string) (reflect.Value, bool, error) {
	name, ok := t[key]
	if !ok {
		return reflect.Value{}, false, nil
	}
	if name == "" {
		name = prefix + strings.ToUpper(field)
	}
	m := v.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, false, fmt.Errorf("%s: method %s not found on %s", field, name, v.Type())
	}
	return m, true, nil
}

func bindCb[F any](dst *F, m reflect.Value, ok bool) error {
	if !ok {
		return nil
	}
	f, isF := m.Interface().(F)
	if !isF {
		return fmt.Errorf("callback has type %s, want %T", m.Type(), *dst)
	}
	*dst = f
	return nil
}

// InitRegs initializes all Mem, Reg8 and Device fields of the structure
// pointed to by data, according to their "hwio" struct tag. Options are:
//
//	size=0x800      Mem: physical size, Device: size of the range.
//	vsize=0x2000    Mem: virtual size (defaults to size), the physical
//	                memory is mirrored over it.
//	reset=0x12      Reg8: initial value.
//	rwmask=0xF0     Reg8: writable bits (default all).
//	readonly        Writes are ignored.
//	writeonly       Reads return 0 (Reg8, Device).
//	rcb[=Name]      Read callback, defaults to Read<FIELD>.
//	pcb[=Name]      Peek callback, defaults to Peek<FIELD>.
//	wcb[=Name]      Write callback, defaults to Write<FIELD>.
func InitRegs(data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("InitRegs: want pointer to struct, got %T", data)
	}
	st := v.Elem()
	var errs []error
	for i := range st.NumField() {
		sf := st.Type().Field(i)
		tag, ok := sf.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		if !sf.IsExported() {
			errs = append(errs, fmt.Errorf("%s: unexported field with hwio tag", sf.Name))
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sf.Name, err))
			continue
		}
		if err := initReg(v, st.Field(i).Addr().Interface(), sf.Name, opts); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sf.Name, err))
		}
	}
	return errors.Join(errs...)
}

func MustInitRegs(data any) {
	if err := InitRegs(data); err != nil {
		panic(err)
	}
}

func initReg(v reflect.Value, ptr any, name string, opts regTag) error {
	var flags RWFlags
	if opts.has("readonly") {
		flags |= ReadOnlyFlag
	}
	if opts.has("writeonly") {
		flags |= WriteOnlyFlag
	}

	rcb, hasrcb, err := opts.callback(v, "rcb", "Read", name)
	if err != nil {
		return err
	}
	pcb, haspcb, err := opts.callback(v, "pcb", "Peek", name)
	if err != nil {
		return err
	}
	wcb, haswcb, err := opts.callback(v, "wcb", "Write", name)
	if err != nil {
		return err
	}

	switch r := ptr.(type) {
	case *Mem:
		size, err := opts.uint("size", 0)
		if err != nil {
			return err
		}
		if size == 0 {
			return errors.New("Mem without size")
		}
		vsize, err := opts.uint("vsize", size)
		if err != nil {
			return err
		}
		if vsize%size != 0 {
			return fmt.Errorf("vsize %#x is not a multiple of size %#x", vsize, size)
		}
		r.Name = name
		r.Data = make([]byte, size)
		r.VSize = int(vsize)
		if flags&ReadOnlyFlag != 0 {
			r.Flags |= MemFlagReadOnly
		}
		return bindCb(&r.WriteCb, wcb, haswcb)

	case *Reg8:
		reset, err := opts.uint("reset", 0)
		if err != nil {
			return err
		}
		rwmask, err := opts.uint("rwmask", 0xFF)
		if err != nil {
			return err
		}
		r.Name = name
		r.Value = uint8(reset)
		r.RoMask = ^uint8(rwmask)
		r.Flags = flags
		return errors.Join(
			bindCb(&r.ReadCb, rcb, hasrcb),
			bindCb(&r.PeekCb, pcb, haspcb),
			bindCb(&r.WriteCb, wcb, haswcb),
		)

	case *Device:
		size, err := opts.uint("size", 0)
		if err != nil {
			return err
		}
		if size == 0 {
			return errors.New("Device without size")
		}
		r.Name = name
		r.Size = int(size)
		r.Flags = flags
		return errors.Join(
			bindCb(&r.ReadCb, rcb, hasrcb),
			bindCb(&r.PeekCb, pcb, haspcb),
			bindCb(&r.WriteCb, wcb, haswcb),
		)
	}
	return fmt.Errorf("unsupported type %T", ptr)
}

// bankGetRegs returns the fields of bank bankNum, with their offsets.
func bankGetRegs(bank any, bankNum int) ([]bankReg, error) {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("bank: want pointer to struct, got %T", bank)
	}
	st := v.Elem()

	var regs []bankReg
	for i := range st.NumField() {
		sf := st.Type().Field(i)
		tag, ok := sf.Tag.Lookup("hwio")
		if !ok || !sf.IsExported() {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sf.Name, err)
		}
		if !opts.has("offset") {
			continue
		}
		num, err := opts.uint("bank", 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sf.Name, err)
		}
		if int(num) != bankNum {
			continue
		}
		off, err := opts.uint("offset", 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sf.Name, err)
		}
		regs = append(regs, bankReg{
			regPtr: st.Field(i).Addr().Interface(),
			offset: uint16(off),
		})
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("bank %d of %T is empty", bankNum, bank)
	}
	return regs, nil
}
