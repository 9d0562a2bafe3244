// Package argv converts Go argument lists into C-style argument vectors.
//
// Encode produces one owned, NUL-terminated buffer per argument in the
// original order. Backends copy these buffers into their foreign memory and
// build the address table next to them:
//
//	vec, err := argv.Encode([]string{"-o", "a.out", "main.o"})
//	if err != nil {
//		// errors.ArgIndex(err) names the offending argument
//	}
//	for i := 0; i < vec.Len(); i++ {
//		copyToForeign(vec.Bytes(i))
//	}
//
// This package is internal to the bridge and its backends.
package argv
