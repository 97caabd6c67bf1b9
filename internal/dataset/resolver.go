package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind names one of the two resources a session owns.
type Kind int

const (
	KindVideo Kind = iota
	KindTelemetry
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindTelemetry:
		return "telemetry"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// PathResolver maps a session epoch and resource kind to a path.
type PathResolver interface {
	Resolve(epoch int, kind Kind) string
}

// EpochResolver lays sessions out as BaseDir/epochNN_front.<VideoExt> and
// BaseDir/epochNN_steering.<TelemetryExt>.
type EpochResolver struct {
	BaseDir      string
	VideoExt     string // default "mp4"
	TelemetryExt string // default "csv"
}

func (r EpochResolver) Resolve(epoch int, kind Kind) string {
	var name string
	switch kind {
	case KindTelemetry:
		name = fmt.Sprintf("epoch%02d_steering.%s", epoch, extOr(r.TelemetryExt, "csv"))
	default:
		name = fmt.Sprintf("epoch%02d_front.%s", epoch, extOr(r.VideoExt, "mp4"))
	}
	return filepath.Join(r.BaseDir, name)
}

func extOr(ext, def string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return def
	}
	return ext
}
