package fx

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// MinTick and MaxTick bound the signed 24-bit tick range.
	MinTick = -887272
	MaxTick = 887272
)

// magic holds the 19 precomputed Q128.128 constants used by SqrtRatioAtTick,
// selected by each set bit of |tick|. These are the canonical Uniswap
// TickMath.getSqrtRatioAtTick constants and must be bit-for-bit identical to
// the on-chain reference.
var magic = []struct {
	mask uint32
	hex  string
}{
	{0x2, "fff97272373d413259a46990580e213a"},
	{0x4, "fff2e50f5f656932ef12357cf3c7fdcc"},
	{0x8, "ffe5caca7e10e4e61c3624eaa0941cd0"},
	{0x10, "ffcb9843d60f6159c9db58835c926644"},
	{0x20, "ff973b41fa98c081472e6896dfb254c0"},
	{0x40, "ff2ea16466c96a3843ec78b326b52861"},
	{0x80, "fe5dee046a99a2a811c461f1969c3053"},
	{0x100, "fcbe86c7900a88aedcffc83b479aa3a4"},
	{0x200, "f987a7253ac413176f2b074cf7815e54"},
	{0x400, "f3392b0822b70005940c7a398e4b70f3"},
	{0x800, "e7159475a2c29b7443b29c7fa6e889d9"},
	{0x1000, "d097f3bdfd2022b8845ad8f792aa5825"},
	{0x2000, "a9f746462d870fdf8a65dc1f90e061e5"},
	{0x4000, "70d869a156d2a1b890bb3df62baf32f7"},
	{0x8000, "31be135f97d08fd981231505542fcfa6"},
	{0x10000, "09aa508b5b7a84e1c677de54f3e99bc9"},
	{0x20000, "05d6af8dedb81196699c329225ee604"},
	{0x40000, "2216e584f5fa1ea926041bedfe98"},
	{0x80000, "48a170391f7dc42444e8fa2"},
}

const firstBitConstHex = "fffcb933bd6fad37aa2d162d1a594001"

var magicU256 []*uint256.Int
var firstBitConstU256 *uint256.Int
var oneShl128 *uint256.Int

func init() {
	firstBitConstU256 = mustHexU256(firstBitConstHex)
	magicU256 = make([]*uint256.Int, len(magic))
	for i, m := range magic {
		magicU256[i] = mustHexU256(m.hex)
	}
	oneShl128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
}

func mustHexU256(hex string) *uint256.Int {
	trimmed := strings.TrimLeft(hex, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	v, err := uint256.FromHex("0x" + trimmed)
	if err != nil {
		panic("fx: bad tick-math constant " + hex + ": " + err.Error())
	}
	return v
}

// SqrtRatioAtTick maps a tick to its Q64.96 square-root price, matching
// Uniswap's TickMath.getSqrtRatioAtTick byte-for-byte for every tick in
// [MinTick, MaxTick].
func SqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfRange
	}
	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}
	u := uint32(absTick)

	ratio := new(uint256.Int)
	if u&0x1 != 0 {
		ratio.Set(firstBitConstU256)
	} else {
		ratio.Set(oneShl128)
	}

	tmp := new(uint256.Int)
	for i, m := range magic {
		if u&m.mask == 0 {
			continue
		}
		tmp.Mul(ratio, magicU256[i])
		ratio.Rsh(tmp, 128)
	}

	if tick > 0 {
		// ratio = (2^256 - 1) / ratio, computed in big.Int arithmetic.
		maxU := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
		q := new(big.Int).Div(maxU, ratio.ToBig())
		ratio.SetFromBig(q)
	}

	// round-up shift by 32: (ratio + 2^32 - 1) >> 32, Q128.128 -> Q64.96.
	round := new(uint256.Int).SetUint64(1<<32 - 1)
	ratio.Add(ratio, round)
	ratio.Rsh(ratio, 32)
	return ratio, nil
}

// TickAtSqrtRatio is the inverse of SqrtRatioAtTick: it returns the largest
// tick whose SqrtRatioAtTick is <= sqrtPriceX96 (floor tie-break).
func TickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	lo, hi := int32(MinTick), int32(MaxTick)
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		v, err := SqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		if v.Cmp(sqrtPriceX96) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}
