// Package venue names the two fixed trading venues this service ever
// quotes against. Unlike the teacher's open-ended venue registry (arbitrary
// DEXes discovered and enabled at runtime), this service's venue set is
// closed by the spec: exactly one V4-style venue and one V2-style venue.
package venue

// ID identifies one of the two fixed venues.
type ID string

const (
	V4 ID = "uniswap_v4" // concentrated-liquidity venue, chain A
	V2 ID = "aerodrome_v2" // constant-product venue, chain B
)

// GasUnits is the static, per-venue gas budget used by the gas cost model,
// overridable via GAS_UNITS_V4 / GAS_UNITS_V2.
type GasUnits struct {
	V4 uint64
	V2 uint64
}
