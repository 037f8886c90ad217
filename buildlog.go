package avro

import "fmt"

// BuildWarning is one diagnostic emitted by a codec case during Build,
// kept even when that case ultimately loses to a later one in priority
// order — useful for explaining why a particular case was skipped.
type BuildWarning struct {
	Case    string
	Message string
}

func (w BuildWarning) String() string { return fmt.Sprintf("[%s] %s", w.Case, w.Message) }

// BuildLog collects BuildWarnings across one Build call. A nil *BuildLog
// is valid and discards everything, so callers that don't care about
// diagnostics can pass nil to BuildWithLog (Build does exactly that).
type BuildLog struct {
	warnings []BuildWarning
}

func NewBuildLog() *BuildLog { return &BuildLog{} }

func (l *BuildLog) Warn(caseName, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.warnings = append(l.warnings, BuildWarning{Case: caseName, Message: fmt.Sprintf(format, args...)})
}

func (l *BuildLog) Warnings() []BuildWarning {
	if l == nil {
		return nil
	}
	return append([]BuildWarning(nil), l.warnings...)
}
