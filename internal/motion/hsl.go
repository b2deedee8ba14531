package motion

// RGBToHSL converts 8-bit RGB to hue [0,359], saturation and light
// [0,100] using 16.16 fixed-point arithmetic. The result is bit exact
// across platforms.
func RGBToHSL(r, g, b uint8) (hue, saturation, light int) {
	red := uint32(r) << 8
	green := uint32(g) << 8
	blue := uint32(b) << 8

	v := max(red, green, blue)
	m := min(red, green, blue)

	var hue2, sat2 uint32
	light2 := (m + v) / 2

	if light2 != 0 {
		vm := v - m
		if vm != 0 {
			if light2 < 32768 {
				sat2 = (vm << 16) / (v + m)
			} else {
				sat2 = (vm << 16) / (131072 - v - m)
			}

			red2 := ((((v - red) << 16) / vm) * 60) >> 16
			green2 := ((((v - green) << 16) / vm) * 60) >> 16
			blue2 := ((((v - blue) << 16) / vm) * 60) >> 16

			switch {
			case red == v:
				if green == m {
					hue2 = 300 + blue2
				} else {
					hue2 = 60 - green2
				}
			case green == v:
				if blue == m {
					hue2 = 60 + red2
				} else {
					hue2 = 180 - blue2
				}
			default:
				if red == m {
					hue2 = 180 + green2
				} else {
					hue2 = 300 - red2
				}
			}
		}
	}

	hue = int(hue2 % 360)
	saturation = int((sat2 * 100) >> 16)
	light = int((light2 * 100) >> 16)
	return hue, saturation, light
}

// HSLToRGB is the approximate inverse of RGBToHSL.
func HSLToRGB(hue, saturation, light int) (r, g, b uint8) {
	var v int
	if light < 50 {
		v = light * (saturation + 100) / 100
	} else {
		v = light + saturation - light*saturation/100
	}
	if v <= 0 {
		return 0, 0, 0
	}

	m := 2*light - v
	sv := 100 * (v - m) / v
	sextant := hue / 60
	fract := 100 * (hue - sextant*60) / 60
	vsf := v * sv * fract / 10000
	mid1 := m + vsf
	mid2 := v - vsf

	var red, green, blue int
	switch sextant {
	case 0:
		red, green, blue = v, mid1, m
	case 1:
		red, green, blue = mid2, v, m
	case 2:
		red, green, blue = m, v, mid1
	case 3:
		red, green, blue = m, mid2, v
	case 4:
		red, green, blue = mid1, m, v
	default:
		red, green, blue = v, m, mid2
	}
	return channel(red), channel(green), channel(blue)
}

func channel(percent int) uint8 {
	c := percent * 255 / 100
	switch {
	case c < 0:
		return 0
	case c > 255:
		return 255
	}
	return uint8(c)
}

// hueDistance is the circular distance between two hues in degrees.
func hueDistance(a, b int) int {
	d := abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
