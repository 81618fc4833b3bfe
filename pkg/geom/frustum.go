package geom

// HeightAt returns the axial distance above the bottom at which the wall of
// a frustum has radius r. The caller must ensure top != bottom. The result
// is not limited to [0, height].
func HeightAt(bottom, top, height, r float64) float64 {
	return height * (r - bottom) / (top - bottom)
}
