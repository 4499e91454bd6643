// Package fx implements the 256-bit fixed-point arithmetic and Uniswap-v4-style
// tick math shared by the V4 and V2 quoters.
package fx

import "errors"

// ErrArithmeticOverflow is returned instead of wrapping when an intermediate
// computation would exceed the representable range.
var ErrArithmeticOverflow = errors.New("fx: arithmetic overflow")

// ErrTickOutOfRange is returned by SqrtRatioAtTick for ticks outside
// [MinTick, MaxTick].
var ErrTickOutOfRange = errors.New("fx: tick out of range")
