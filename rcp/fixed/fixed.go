// Package fixed provides fixed-point arithmetic types used by the RCP.
package fixed

// Matrix elements as the RSP's matrix unit expects them.
//
//go:generate go run mkfixed.go Int16_16 int32
type Int16_16 int32

// Screen coordinates of rectangle commands.
//
//go:generate go run mkfixed.go UInt14_2 uint16
type UInt14_2 uint16

// Int returns the integer part as the two's complement upper half.
func (x Int16_16) Int() int16 { return int16(uint32(x) >> 16) }

// Frac returns the fractional part as the lower half.
func (x Int16_16) Frac() uint16 { return uint16(x) }

// Int16_16Parts reassembles a value that was split by Int and Frac.
func Int16_16Parts(i int16, f uint16) Int16_16 {
	return Int16_16(uint32(uint16(i))<<16 | uint32(f))
}
