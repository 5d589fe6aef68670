package util

const DateFormat = "2006-01-02"

const (
	ModeDebug   = "debug"
	ModeRelease = "release"
)
