package motor

import (
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
)

// family captures how a vendor's integrated sensor reports motion.
type family struct {
	motorType types.MotorType
	// sensor units per motor rotation
	unitsPerRotation float64
	// multiply a native velocity to get motor rotations per second
	velocityToRPS float64
}

var (
	neoFamily = family{
		motorType:        types.MotorTypeNEO,
		unitsPerRotation: 1.0,
		velocityToRPS:    1.0 / 60.0, // RPM
	}

	falconFamily = family{
		motorType:        types.MotorTypeFalcon,
		unitsPerRotation: 2048.0,
		velocityToRPS:    10.0 / 2048.0, // ticks per 100ms
	}
)
