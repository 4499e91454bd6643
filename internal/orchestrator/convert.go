package orchestrator

import "math/big"

func toRaw(human float64, decimals int) *big.Int {
	scale := new(big.Float).SetFloat64(pow10f(decimals))
	scaled := new(big.Float).Mul(big.NewFloat(human), scale)
	out, _ := scaled.Int(nil)
	if out.Sign() < 0 {
		return big.NewInt(0)
	}
	return out
}

func toHuman(raw *big.Int, decimals int) float64 {
	f := new(big.Float).SetInt(raw)
	f.Quo(f, new(big.Float).SetFloat64(pow10f(decimals)))
	v, _ := f.Float64()
	return v
}

func pow10f(n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
