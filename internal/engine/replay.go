package engine

// Replay folds Apply over a command log starting from initial,
// returning the first rejection encountered (if any) or the final
// state. It backs the optional snapshot sink's "replay on startup"
// contract and is the vehicle for the determinism test that compares
// two independent walks of the same command sequence.
func Replay(initial *GameState, cmds []TimedCommand) (*GameState, error) {
	state := initial
	for _, tc := range cmds {
		newState, _, err := Apply(state, tc.Command, tc.Now)
		if err != nil {
			return state, err
		}
		state = newState
	}
	return state, nil
}

// TimedCommand pairs a command with the wall-clock reading it was
// issued under, since Apply takes "now" as an explicit argument rather
// than reading it ambiently.
type TimedCommand struct {
	Command Command
	Now     int64
}
