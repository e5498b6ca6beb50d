package session

// Navigation over the question list. The seen-set only grows; the save
// asymmetry (forward navigation saves, previous/jump never do) is observed
// behavior of the flow this player replaces and is deliberately kept — the
// service layer triggers saves exclusively around Advance.

// Advance marks the current question seen and moves forward. It returns true
// when the current question is the last one, in which case the caller must
// run the completion path instead of moving.
func (s *Session) Advance() (last bool, err error) {
	if s.terminal {
		return false, ErrTerminal
	}

	s.seen[s.questions[s.index].ID] = struct{}{}
	if s.AtLast() {
		return true, nil
	}
	s.index++
	return false, nil
}

// Retreat marks the current question seen and moves back one question.
// No-op at index 0. Never triggers a save.
func (s *Session) Retreat() error {
	if s.terminal {
		return ErrTerminal
	}

	s.seen[s.questions[s.index].ID] = struct{}{}
	if s.index > 0 {
		s.index--
	}
	return nil
}

// JumpTo marks the target question seen and makes it current. Used by the
// question-grid sidebar. Never triggers a save, so an edited answer on the
// question being left stays local until a forward save or the
// forced-completion sweep picks it up.
func (s *Session) JumpTo(index int) error {
	if s.terminal {
		return ErrTerminal
	}
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	s.seen[s.questions[index].ID] = struct{}{}
	s.index = index
	return nil
}
