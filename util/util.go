package util

import "log"

// Debug is the verbosity of DPrintf; level 0 messages always print.
var Debug uint64 = 0

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		log.Printf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

// SumOverflows reports whether n + m wraps around a uint64.
func SumOverflows(n uint64, m uint64) bool {
	return n+m < n
}
