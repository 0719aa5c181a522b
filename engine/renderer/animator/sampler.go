package animator

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// sampleTrack evaluates a track at time t (seconds). Times before the first key return the first
// value; times after the last key return the last value. Rotation results are unit quaternions
// packed as (x, y, z, w).
func sampleTrack(track *model.AnimationTrack, t float32) [4]float32 {
	var out [4]float32
	n := len(track.Times)
	if n == 0 {
		return out
	}
	comps := track.Components()
	cubic := track.Interpolation == model.InterpolationCubicSpline
	stride := comps
	valueOffset := 0
	if cubic {
		stride = comps * 3
		valueOffset = comps
	}
	value := func(k int) []float32 {
		o := k*stride + valueOffset
		return track.Values[o : o+comps]
	}

	if len(track.Values) < n*stride {
		return out
	}
	if t <= track.Times[0] || n == 1 {
		copy(out[:], value(0))
		return out
	}
	if t >= track.Times[n-1] {
		copy(out[:], value(n-1))
		return out
	}

	// first key with time > t
	hi := sort.Search(n, func(i int) bool { return track.Times[i] > t })
	lo := hi - 1
	t0, t1 := track.Times[lo], track.Times[hi]
	dt := t1 - t0
	alpha := float32(0)
	if dt > 0 {
		alpha = (t - t0) / dt
	}

	switch track.Interpolation {
	case model.InterpolationStep:
		copy(out[:], value(lo))
	case model.InterpolationCubicSpline:
		out = cubicSpline(track, lo, hi, alpha, dt, comps, stride)
		if track.Path == model.TrackRotation {
			q := mgl32.Quat{W: out[3], V: mgl32.Vec3{out[0], out[1], out[2]}}.Normalize()
			out = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
		}
	default:
		a, b := value(lo), value(hi)
		if track.Path == model.TrackRotation {
			qa := mgl32.Quat{W: a[3], V: mgl32.Vec3{a[0], a[1], a[2]}}
			qb := mgl32.Quat{W: b[3], V: mgl32.Vec3{b[0], b[1], b[2]}}
			q := slerp(qa, qb, alpha)
			out = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
		} else {
			for i := 0; i < comps; i++ {
				out[i] = a[i] + (b[i]-a[i])*alpha
			}
		}
	}
	return out
}

// cubicSpline evaluates a glTF cubic Hermite segment. Each key stores in-tangent, value and
// out-tangent; tangents are scaled by the segment duration.
func cubicSpline(track *model.AnimationTrack, lo, hi int, s, dt float32, comps, stride int) [4]float32 {
	var out [4]float32
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	p0 := track.Values[lo*stride+comps : lo*stride+2*comps]
	m0 := track.Values[lo*stride+2*comps : lo*stride+3*comps]
	p1 := track.Values[hi*stride+comps : hi*stride+2*comps]
	m1 := track.Values[hi*stride : hi*stride+comps]
	for i := 0; i < comps; i++ {
		out[i] = h00*p0[i] + h10*dt*m0[i] + h01*p1[i] + h11*dt*m1[i]
	}
	return out
}

// slerp interpolates along the shorter arc.
func slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}
