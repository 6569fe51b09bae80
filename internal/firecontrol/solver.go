package firecontrol

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/botcore/internal/dynamo"
)

type Solution struct {
	Valid       bool    `json:"valid"`
	TurretAngle float64 `json:"turret_angle"`
	LaunchAngle float64 `json:"launch_angle"`
	LaunchSpeed float64 `json:"launch_speed"`
}

func (s Solution) String() string {
	if !s.Valid {
		return "no solution"
	}
	return fmt.Sprintf("turret %.1f° hood %.1f° speed %.0f in/s", s.TurretAngle, s.LaunchAngle, s.LaunchSpeed)
}

type Solver struct {
	cfg Config
}

func NewSolver(cfg Config) *Solver {
	return &Solver{cfg: cfg}
}

func (s *Solver) Config() Config { return s.cfg }

// Inherited is the share of platform velocity carried by the projectile.
func (s *Solver) Inherited(platformVelocity r3.Vector) r3.Vector {
	return platformVelocity.Mul(s.cfg.Inheritance)
}

// LaunchVector is the muzzle velocity in the world frame.
func LaunchVector(turretDeg, launchDeg, speed float64) r3.Vector {
	yaw := turretDeg * math.Pi / 180
	pitch := launchDeg * math.Pi / 180
	return r3.Vector{
		X: speed * math.Cos(pitch) * math.Cos(yaw),
		Y: speed * math.Cos(pitch) * math.Sin(yaw),
		Z: speed * math.Sin(pitch),
	}
}

// Landing returns the horizontal displacement of a projectile launched with
// velocity v after the flight time t = (vz + √(vz² + 2·g·dz))/g, where dz is
// the goal height minus the launcher height. ok is false when the
// discriminant is negative or the time comes out negative.
func (s *Solver) Landing(v r3.Vector, dz float64) (r3.Vector, bool) {
	g := s.cfg.Gravity
	disc := v.Z*v.Z + 2*g*dz
	if disc < 0 {
		return r3.Vector{}, false
	}
	t := (v.Z + math.Sqrt(disc)) / g
	if t < 0 {
		return r3.Vector{}, false
	}
	return r3.Vector{X: v.X * t, Y: v.Y * t}, true
}

// Miss is the horizontal distance between where the shot lands and rel.
func (s *Solver) Miss(rel, v r3.Vector) (float64, bool) {
	land, ok := s.Landing(v, rel.Z)
	if !ok {
		return math.Inf(1), false
	}
	return math.Hypot(land.X-rel.X, land.Y-rel.Y), true
}

// Solve searches for the slowest shot to rel, the goal relative to the
// launcher, given the inherited platform velocity. The preferred band is
// scanned first, the low-arc band only if it has no solution.
func (s *Solver) Solve(rel, inherited r3.Vector) Solution {
	nominal := math.Atan2(rel.Y, rel.X) * 180 / math.Pi

	sol := s.scan(rel, inherited, nominal, s.cfg.PreferredMinAngle, s.cfg.PreferredMaxAngle)
	if !sol.Valid {
		sol = s.scan(rel, inherited, nominal, s.cfg.LowArcMinAngle, s.cfg.LowArcMaxAngle)
	}
	if !sol.Valid {
		sol.TurretAngle = nominal
	}
	return sol
}

// scan visits turret offsets in parallel. Each offset keeps its own first
// strictly-slowest hit and the offsets are merged in order, which picks the
// same combination a single sequential pass would.
func (s *Solver) scan(rel, inherited r3.Vector, nominal, minAngle, maxAngle float64) Solution {
	cfg := s.cfg
	offsets := steps(-cfg.TurretSpan, cfg.TurretSpan, cfg.TurretStep)
	angles := steps(minAngle, maxAngle, cfg.AngleStep)
	speeds := steps(cfg.MinSpeed, cfg.MaxSpeed, cfg.SpeedStep)

	best := make([]Solution, offsets)
	dynamo.ParallelFor(offsets, 1, func(start, end int) {
		for i := start; i < end; i++ {
			turret := nominal - cfg.TurretSpan + float64(i)*cfg.TurretStep
			bestSpeed := math.Inf(1)

			for a := 0; a < angles; a++ {
				angle := minAngle + float64(a)*cfg.AngleStep
				for v := 0; v < speeds; v++ {
					speed := cfg.MinSpeed + float64(v)*cfg.SpeedStep
					if speed >= bestSpeed {
						break
					}
					vel := inherited.Add(LaunchVector(turret, angle, speed))
					miss, ok := s.Miss(rel, vel)
					if !ok || miss > cfg.LandingTolerance {
						continue
					}
					bestSpeed = speed
					best[i] = Solution{Valid: true, TurretAngle: turret, LaunchAngle: angle, LaunchSpeed: speed}
				}
			}
		}
	})

	var out Solution
	for _, b := range best {
		if b.Valid && (!out.Valid || b.LaunchSpeed < out.LaunchSpeed) {
			out = b
		}
	}
	return out
}
