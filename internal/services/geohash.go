package services

import "strings"

// geohash encodes (lat, lon) to a base32 geohash string at the given
// precision. 5 characters gives ~4.9km cells, the precision spec.md §3
// calls for on Profile.geohash. No geohash library appears anywhere in
// the retrieved corpus, so this is grounded directly on the public
// geohash algorithm (interleaved binary search, base32 alphabet) rather
// than on teacher code — justified in DESIGN.md's standard-library section.
const geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"

func encodeGeohash(lat, lon float64, precision int) string {
	var latRange = [2]float64{-90, 90}
	var lonRange = [2]float64{-180, 180}

	var sb strings.Builder
	bit, ch, isEven := 0, 0, true

	for sb.Len() < precision {
		if isEven {
			mid := (lonRange[0] + lonRange[1]) / 2
			if lon >= mid {
				ch |= 1 << (4 - bit)
				lonRange[0] = mid
			} else {
				lonRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if lat >= mid {
				ch |= 1 << (4 - bit)
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}
		isEven = !isEven

		if bit < 4 {
			bit++
		} else {
			sb.WriteByte(geohashBase32[ch])
			bit, ch = 0, 0
		}
	}
	return sb.String()
}

// EncodeGeohash is the exported entry point used by the profile service
// when persisting lat/lon (spec.md §3's derived `geohash` field).
func EncodeGeohash(lat, lon float64) string {
	return encodeGeohash(lat, lon, 5)
}
