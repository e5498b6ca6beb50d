package config

import (
	"fmt"
)

type MirrorKeyStruct struct{}

func NewMirrorKeyStruct() *MirrorKeyStruct {
	return &MirrorKeyStruct{}
}

// AnswersKey returns the durable-mirror key holding the serialized answer map
// for one test attempt. The key shape is shared with the browser build of the
// player, so mirrors written by either side stay readable.
func (r *MirrorKeyStruct) AnswersKey(testID int64) string {
	return fmt.Sprintf("test_answers_%d", testID)
}

// DurationKey returns the fixed key under which the dashboard that launched
// the test stores the configured duration (minutes). Read once at load,
// cleared on completion.
func (r *MirrorKeyStruct) DurationKey() string {
	return "testDuration"
}

var MirrorKey = NewMirrorKeyStruct()
