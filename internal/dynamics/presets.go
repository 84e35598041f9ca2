package dynamics

import (
	"math"

	"github.com/r-mohan/quadnmpc/internal/vectors"
)

func uniform4(v float64) [4]float64 { return [4]float64{v, v, v, v} }

func scaled4(scale float64, pattern [4]float64) [4]float64 {
	for i := range pattern {
		pattern[i] *= scale
	}
	return pattern
}

// Crazyflie builds the nonlinear model from the Bitcraze Crazyflie 2.0
// system identification (https://arxiv.org/abs/1608.05786). The optional
// drag coefficients default to zero.
func Crazyflie(drag [3]float64) *NonlinearQuadrotor {
	const (
		thrustCoeff = 3.1582e-10 // N / rpm^2
		torqueCoeff = 7.9379e-12 // N m / rpm^2
		pwmMax      = 65535.0
	)
	params := vectors.ModelParameters{
		Mass:          0.027,
		Drag:          drag,
		Ixx:           1.436e-5,
		Iyy:           1.395e-5,
		Izz:           2.173e-5,
		SpinDragRatio: uniform4(torqueCoeff / thrustCoeff),
		MomentArmY:    scaled4(0.0283, [4]float64{1, 1, -1, -1}),
		MomentArmX:    scaled4(0.0283, [4]float64{1, -1, -1, 1}),
	}

	pwmToRPM := func(pwm float64) float64 { return 0.2685*pwm + 4070.3 }
	uMax := thrustCoeff * pwmToRPM(pwmMax) * pwmToRPM(pwmMax)

	lbu := make([]float64, vectors.NumMotors)
	ubu := make([]float64, vectors.NumMotors)
	for i := range ubu {
		ubu[i] = uMax
	}
	return NewNonlinearQuadrotor(params, lbu, ubu)
}

// FusionOne builds the nonlinear model from the Fusion 1 racing quadrotor
// identification (https://arc.aiaa.org/doi/10.2514/6.2020-1238).
func FusionOne(drag [3]float64) *NonlinearQuadrotor {
	const (
		rotorDiameter = 0.0584 // m
		thrustCoeff   = 0.279
		powerCoeff    = 0.333
		airDensity    = 1.204 // kg/m^3
		rpmMax        = 35000.0
	)
	params := vectors.ModelParameters{
		Mass:          0.250,
		Drag:          drag,
		Ixx:           4.27e-4,
		Iyy:           6.09e-4,
		Izz:           1.50e-3,
		SpinDragRatio: uniform4(powerCoeff * rotorDiameter / (2 * math.Pi * thrustCoeff)),
		MomentArmY:    scaled4(0.0635, [4]float64{1, 1, -1, -1}),
		MomentArmX:    scaled4(0.0635, [4]float64{1, -1, -1, 1}),
	}

	k := airDensity * thrustCoeff * math.Pow(rotorDiameter, 4) / (4 * math.Pi * math.Pi)
	wMax := rpmMax * 2 * math.Pi / 60
	uMax := k * wMax * wMax

	lbu := make([]float64, vectors.NumMotors)
	ubu := make([]float64, vectors.NumMotors)
	for i := range ubu {
		ubu[i] = uMax
	}
	return NewNonlinearQuadrotor(params, lbu, ubu)
}
