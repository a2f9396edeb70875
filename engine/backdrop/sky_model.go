package backdrop

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Preetham model constants, shared with assets/sky_frag.wgsl.
const (
	skyEE                 = 1000.0
	cutoffAngle           = 1.6110731556870734
	steepness             = 1.5
	rayleighZenithLength  = 8.4e3
	mieZenithLength       = 1.25e3
	sunAngularDiameterCos = 0.9999566769464484
	threeOverSixteenPi    = 0.05968310365946075
	oneOverFourPi         = 0.07957747154594767
)

var (
	totalRayleigh = mgl64.Vec3{5.804542996261093e-6, 1.3562911419845635e-5, 3.0265902468824876e-5}
	mieConst      = mgl64.Vec3{1.8399918514433978e14, 2.7798023919660528e14, 4.0790479543861094e14}
)

// SkyModel holds the sky shader inputs and evaluates the same analytic daylight model on the CPU.
type SkyModel struct {
	SunPosition     mgl32.Vec3
	Up              mgl32.Vec3
	Turbidity       float32
	Rayleigh        float32
	MieCoefficient  float32
	MieDirectionalG float32
}

// NewSkyModel builds the sky inputs for a sun placement with the default mie terms.
func NewSkyModel(sun Sun) SkyModel {
	return SkyModel{
		SunPosition:     sun.Position,
		Up:              mgl32.Vec3{0, 1, 0},
		Turbidity:       sun.Turbidity,
		Rayleigh:        sun.Rayleigh,
		MieCoefficient:  MieCoefficient,
		MieDirectionalG: MieDirectionalG,
	}
}

// Radiance returns the display color of the sky seen along direction.
//
// Parameters:
//   - direction: the view direction, need not be normalized
//
// Returns:
//   - mgl32.Vec3: the color, unclamped
func (m SkyModel) Radiance(direction mgl32.Vec3) mgl32.Vec3 {
	sunPosition := vec64(m.SunPosition)
	up := vec64(m.Up)
	sunDirection := normalize64(sunPosition)

	sunE := sunIntensity(sunDirection.Dot(up))
	sunFade := 1 - clamp(1-math.Exp(sunPosition.Y()/450000), 0, 1)
	betaR := totalRayleigh.Mul(float64(m.Rayleigh) - (1 - sunFade))
	betaM := totalMie(float64(m.Turbidity)).Mul(float64(m.MieCoefficient))

	dir := normalize64(vec64(direction))
	zenithAngle := math.Acos(math.Max(0, up.Dot(dir)))
	inverse := 1 / (math.Cos(zenithAngle) + 0.15*math.Pow(93.885-zenithAngle*180/math.Pi, -1.253))
	fex := exp3(betaR.Mul(rayleighZenithLength * inverse).Add(betaM.Mul(mieZenithLength * inverse)).Mul(-1))

	cosTheta := dir.Dot(sunDirection)
	betaRTheta := betaR.Mul(rayleighPhase(cosTheta*0.5 + 0.5))
	betaMTheta := betaM.Mul(hgPhase(cosTheta, float64(m.MieDirectionalG)))
	denominator := betaR.Add(betaM)
	ratio := mgl64.Vec3{}
	for i := range 3 {
		ratio[i] = sunE * (betaRTheta[i] + betaMTheta[i]) / math.Max(denominator[i], 1e-30)
	}

	horizon := clamp(math.Pow(1-up.Dot(sunDirection), 5), 0, 1)
	var lin, l0, out mgl64.Vec3
	sundisk := smoothstep(sunAngularDiameterCos, sunAngularDiameterCos+0.00002, cosTheta)
	gamma := 1 / (1.2 + 1.2*sunFade)
	for i := range 3 {
		lin[i] = pow0(ratio[i]*(1-fex[i]), 1.5)
		lin[i] *= mix(1, pow0(ratio[i]*fex[i], 0.5), horizon)
		l0[i] = 0.1*fex[i] + sunE*19000*fex[i]*sundisk
	}
	base := mgl64.Vec3{0, 0.0003, 0.00075}
	for i := range 3 {
		out[i] = pow0((lin[i]+l0[i])*0.04+base[i], gamma)
	}
	return mgl32.Vec3{float32(out[0]), float32(out[1]), float32(out[2])}
}

// Luminance returns the Rec. 709 luminance of Radiance(direction).
func (m SkyModel) Luminance(direction mgl32.Vec3) float32 {
	c := m.Radiance(direction)
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

func sunIntensity(zenithAngleCos float64) float64 {
	c := clamp(zenithAngleCos, -1, 1)
	return skyEE * math.Max(0, 1-math.Exp(-(cutoffAngle-math.Acos(c))/steepness))
}

func totalMie(turbidity float64) mgl64.Vec3 {
	c := 0.2 * turbidity * 10e-18
	return mieConst.Mul(0.434 * c)
}

func rayleighPhase(cosTheta float64) float64 {
	return threeOverSixteenPi * (1 + cosTheta*cosTheta)
}

func hgPhase(cosTheta, g float64) float64 {
	g2 := g * g
	inverse := 1 / math.Pow(1-2*g*cosTheta+g2, 1.5)
	return oneOverFourPi * (1 - g2) * inverse
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func normalize64(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

func exp3(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Exp(v[0]), math.Exp(v[1]), math.Exp(v[2])}
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

func mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// pow0 is math.Pow with negative bases clamped to zero, as in the shader.
func pow0(x, y float64) float64 {
	return math.Pow(math.Max(x, 0), y)
}
