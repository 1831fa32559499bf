package rowencode

import (
	"encoding/binary"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// encodeNumericText renders an unscaled big.Int and a base-10 scale as a
// PostgreSQL numeric text literal, using shopspring/decimal's fixed-point
// formatting so the "integer-digit count equals scale" boundary (e.g.
// unscaled=1234, scale=4 -> "0.1234", not ".1234" or "1234e-4") comes for
// free instead of being hand-rolled digit-slicing.
func encodeNumericText(unscaled *big.Int, scale int32) string {
	places := scale
	if places < 0 {
		places = 0
	}
	return decimal.NewFromBigInt(unscaled, -scale).StringFixed(places)
}

// encodeNumericBinary lays out unscaled/scale as PostgreSQL's binary numeric
// wire format: int16 ndigits, int16 weight, uint16 sign, int16 dscale,
// followed by ndigits base-10000 digit groups, grouped outward from the
// decimal point the way PostgreSQL's numeric.c does.
func encodeNumericBinary(unscaled *big.Int, scale int32) []byte {
	sign := uint16(0x0000)
	abs := unscaled
	if unscaled.Sign() < 0 {
		sign = 0x4000
		abs = new(big.Int).Neg(unscaled)
	}

	dscale := scale
	if dscale < 0 {
		dscale = 0
	}

	digits := abs.String()
	if unscaled.Sign() == 0 {
		digits = "0"
	}
	effScale := scale
	if scale > 0 {
		if len(digits) <= int(scale) {
			digits = strings.Repeat("0", int(scale)-len(digits)+1) + digits
		}
	} else if scale < 0 {
		digits += strings.Repeat("0", int(-scale))
		effScale = 0
	}

	intLen := len(digits) - int(effScale)
	intPart := digits[:intLen]
	fracPart := digits[intLen:]

	for len(intPart)%4 != 0 {
		intPart = "0" + intPart
	}
	for len(fracPart)%4 != 0 {
		fracPart = fracPart + "0"
	}

	var ndigits []uint16
	for i := 0; i < len(intPart); i += 4 {
		v, _ := strconv.Atoi(intPart[i : i+4])
		ndigits = append(ndigits, uint16(v))
	}
	weight := int16(len(ndigits) - 1)
	for i := 0; i < len(fracPart); i += 4 {
		v, _ := strconv.Atoi(fracPart[i : i+4])
		ndigits = append(ndigits, uint16(v))
	}

	for len(ndigits) > 0 && ndigits[0] == 0 {
		ndigits = ndigits[1:]
		weight--
	}
	for len(ndigits) > 0 && ndigits[len(ndigits)-1] == 0 {
		ndigits = ndigits[:len(ndigits)-1]
	}
	if len(ndigits) == 0 {
		weight = 0
	}

	buf := make([]byte, 8+2*len(ndigits))
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(ndigits)))
	binary.BigEndian.PutUint16(buf[2:4], uint16(weight))
	binary.BigEndian.PutUint16(buf[4:6], sign)
	binary.BigEndian.PutUint16(buf[6:8], uint16(dscale))
	for i, d := range ndigits {
		binary.BigEndian.PutUint16(buf[8+2*i:10+2*i], d)
	}
	return buf
}
