package simulation

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
	"google.golang.org/protobuf/types/known/structpb"
)

// Tuning is a runtime change of the flocking parameters sent by a harness.
type Tuning struct {
	Params flock.Params
	Mode   flock.UpdateMode
	Paused bool
}

// Keys of the tuning message fields.
const (
	keyMaxSpeed         = "maxSpeed"
	keyMaxSteeringForce = "maxSteeringForce"
	keyPerception       = "perceptionRadius"
	keySeparation       = "separationRadius"
	keyAlignmentWeight  = "alignmentWeight"
	keyCohesionWeight   = "cohesionWeight"
	keySeparationWeight = "separationWeight"
	keyUpdateMode       = "updateMode"
	keyPaused           = "paused"
)

// ToProto encodes the tuning as the message understood by WorldActor.
func (t Tuning) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		keyMaxSpeed:         t.Params.MaxSpeed,
		keyMaxSteeringForce: t.Params.MaxSteeringForce,
		keyPerception:       t.Params.PerceptionRadius,
		keySeparation:       t.Params.SeparationRadius,
		keyAlignmentWeight:  t.Params.AlignmentWeight,
		keyCohesionWeight:   t.Params.CohesionWeight,
		keySeparationWeight: t.Params.SeparationWeight,
		keyUpdateMode:       t.Mode.String(),
		keyPaused:           t.Paused,
	})
}

// TuningFromProto decodes a tuning message on top of base.
// Fields missing from msg keep the value they have in base.
func TuningFromProto(msg *structpb.Struct, base Tuning) (Tuning, error) {
	t := base
	numbers := map[string]*float64{
		keyMaxSpeed:         &t.Params.MaxSpeed,
		keyMaxSteeringForce: &t.Params.MaxSteeringForce,
		keyPerception:       &t.Params.PerceptionRadius,
		keySeparation:       &t.Params.SeparationRadius,
		keyAlignmentWeight:  &t.Params.AlignmentWeight,
		keyCohesionWeight:   &t.Params.CohesionWeight,
		keySeparationWeight: &t.Params.SeparationWeight,
	}

	for key, value := range msg.GetFields() {
		if dst, ok := numbers[key]; ok {
			n, ok := value.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return base, fmt.Errorf("tuning field %q must be a number", key)
			}
			*dst = n.NumberValue
			continue
		}
		switch key {
		case keyUpdateMode:
			str, ok := value.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return base, fmt.Errorf("tuning field %q must be a string", key)
			}
			mode, err := flock.ParseUpdateMode(str.StringValue)
			if err != nil {
				return base, err
			}
			t.Mode = mode
		case keyPaused:
			b, ok := value.GetKind().(*structpb.Value_BoolValue)
			if !ok {
				return base, fmt.Errorf("tuning field %q must be a bool", key)
			}
			t.Paused = b.BoolValue
		default:
			return base, fmt.Errorf("unknown tuning field %q", key)
		}
	}
	return t, nil
}
