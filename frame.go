package ecs

// Frame is the world's logical tick counter, used as a timestamp for
// change detection. Frame zero is never a real frame and never compares
// newer than anything.
type Frame uint32

// FrameZero is the sentinel frame no stored component ever carries.
const FrameZero Frame = 0

// firstFrame is the frame value the world starts at; Update increments
// from here once per call.
const firstFrame Frame = 1

// ChangeStamp records the frame a component cell was last added and the
// frame it was last modified. Modified is always >= Added.
type ChangeStamp struct {
	Added    Frame
	Modified Frame
}

// newStamp returns the stamp for a freshly added cell: both added and
// modified equal the current frame.
func newStamp(current Frame) ChangeStamp {
	return ChangeStamp{Added: current, Modified: current}
}

// touch updates Modified in place, leaving Added untouched.
func (s *ChangeStamp) touch(current Frame) {
	s.Modified = current
}

// isNewer reports whether stamp is strictly newer than systemLast and no
// newer than current: systemLast < stamp <= current. FrameZero therefore
// never counts as newer than anything.
func isNewer(stamp, systemLast, current Frame) bool {
	return systemLast < stamp && stamp <= current
}
