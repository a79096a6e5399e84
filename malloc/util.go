package malloc

import "errors"
import "fmt"
import "reflect"
import "unsafe"

// ErrorOutofmemory the OS refused a slab request. Alloc reports this
// condition as a false result; the value is for callers that prefer
// to panic.
var ErrorOutofmemory = errors.New("malloc.outofmemory")

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}

var zeroblkinit = make([]byte, 1024)

func initblock(block uintptr, size int64) {
	var dst []byte
	initsz := len(zeroblkinit)
	sl := (*reflect.SliceHeader)(unsafe.Pointer(&dst))
	sl.Data, sl.Len = block, initsz
	for i := int64(0); i < size/int64(initsz); i++ {
		copy(dst, zeroblkinit)
		sl.Data = (uintptr)(uint64(sl.Data) + uint64(initsz))
	}
	if sl.Len = int(size) % len(zeroblkinit); sl.Len > 0 {
		copy(dst, zeroblkinit)
	}
}
