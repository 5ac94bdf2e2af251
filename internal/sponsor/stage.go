package sponsor

import "fmt"

// Stage is a step of one payload construction sequence.
type Stage int

const (
	StageIdle Stage = iota
	StagePoolSelected
	StagePermitBuilt
	StagePermitSigned
	StagePayloadEncoded
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePoolSelected:
		return "pool_selected"
	case StagePermitBuilt:
		return "permit_built"
	case StagePermitSigned:
		return "permit_signed"
	case StagePayloadEncoded:
		return "payload_encoded"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError reports the stage a sequence failed to reach.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
